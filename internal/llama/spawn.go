package llama

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"sqlgen/internal/common/fsutil"
	"sqlgen/internal/registry"
)

// spawnRuntime starts one llama-server subprocess per loaded checkpoint.
type spawnRuntime struct {
	cfg Config
}

// NewSpawn constructs a subprocess-backed runtime.
func NewSpawn(cfg Config) Runtime {
	return &spawnRuntime{cfg: cfg.withDefaults()}
}

// spawnModel owns a running llama-server and the checkpoint it serves.
type spawnModel struct {
	client *completionClient
	path   string
	cmd    *exec.Cmd
	exited chan struct{} // closed once cmd.Wait returns
	once   sync.Once
}

func (r *spawnRuntime) Load(path string) (Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	path, err := registry.Resolve(path)
	if err != nil {
		return nil, err
	}
	bin := strings.TrimSpace(r.cfg.Bin)
	if bin == "" {
		bin = discoverLlamaBin()
	}
	if bin == "" {
		return nil, ErrDependencyUnavailable("llama-server not found: set llama.bin or install llama.cpp")
	}

	host := r.cfg.Host
	var port int
	if r.cfg.PortStart > 0 && r.cfg.PortEnd >= r.cfg.PortStart {
		port, err = pickPortInRange(host, r.cfg.PortStart, r.cfg.PortEnd)
	} else {
		port, err = pickFreePort(host)
	}
	if err != nil {
		return nil, err
	}
	baseURL := fmt.Sprintf("http://%s:%d", host, port)

	args := []string{
		"-m", path,
		"--host", host,
		"--port", strconv.Itoa(port),
		"-c", strconv.Itoa(r.cfg.CtxSize),
		"-ngl", strconv.Itoa(r.cfg.GPULayers),
		"-t", strconv.Itoa(r.cfg.Threads),
	}
	args = append(args, r.cfg.ExtraArgs...)

	cmd := exec.Command(bin, args...)
	// Relative assets next to the checkpoint resolve from its directory.
	cmd.Dir = filepath.Dir(path)
	// Captured in memory; the tail is included when the server dies early.
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start llama-server: %w", err)
	}
	pid := cmd.Process.Pid
	logger.Info().Str("adapter", "llama_spawn").Str("event", "start").Str("model", path).Int("pid", pid).Str("host", host).Int("port", port).Send()

	m := &spawnModel{
		client: newCompletionClient(baseURL, ""),
		path:   path,
		cmd:    cmd,
		exited: make(chan struct{}),
	}
	waitErrCh := make(chan error, 1)
	go func() {
		waitErrCh <- cmd.Wait()
		close(m.exited)
	}()

	deadline := time.Now().Add(r.cfg.ReadyTimeout)
	for {
		if time.Now().After(deadline) {
			logger.Warn().Str("adapter", "llama_spawn").Str("event", "timeout").Str("model", path).Int("pid", pid).Send()
			_ = m.Close()
			return nil, fmt.Errorf("llama-server not ready in time: %s", baseURL)
		}
		select {
		case werr := <-waitErrCh:
			tail := stderr.String()
			if len(tail) > 4096 {
				tail = tail[len(tail)-4096:]
			}
			logger.Warn().Str("adapter", "llama_spawn").Str("event", "exit_early").Str("model", path).Int("pid", pid).AnErr("wait_err", werr).Send()
			if werr != nil {
				return nil, fmt.Errorf("llama-server exited early: %v; stderr tail: %s", werr, tail)
			}
			return nil, fmt.Errorf("llama-server exited before ready: %s; stderr tail: %s", baseURL, tail)
		default:
		}
		if m.client.healthy(time.Second) == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	logger.Info().Str("adapter", "llama_spawn").Str("event", "ready").Str("model", path).Int("pid", pid).Str("url", baseURL).Send()
	return m, nil
}

func (m *spawnModel) Predict(ctx context.Context, prompt string, opts Options) (string, error) {
	return m.client.complete(ctx, "", prompt, opts)
}

// Close terminates the server: SIGTERM first, SIGKILL after two seconds.
func (m *spawnModel) Close() error {
	m.once.Do(func() {
		if m.cmd == nil || m.cmd.Process == nil {
			return
		}
		_ = m.cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-m.exited:
		case <-time.After(2 * time.Second):
			_ = m.cmd.Process.Kill()
			<-m.exited
		}
		logger.Info().Str("adapter", "llama_spawn").Str("event", "stop").Str("model", m.path).Int("pid", m.cmd.Process.Pid).Send()
	})
	return nil
}

func pickPortInRange(host string, start, end int) (int, error) {
	for p := start; p <= end; p++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(p)))
		if err != nil {
			continue
		}
		_ = l.Close()
		return p, nil
	}
	return 0, fmt.Errorf("no free port in range %d-%d", start, end)
}

func pickFreePort(host string) (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// discoverLlamaBin attempts to locate a llama.cpp server binary in common paths.
func discoverLlamaBin() string {
	home, _ := os.UserHomeDir()
	candidates := []string{
		filepath.Join(home, "apps", "llama.cpp", "build", "bin", "llama-server"),
		"/usr/local/bin/llama-server",
		"/opt/homebrew/bin/llama-server",
	}
	for _, p := range candidates {
		if fsutil.IsFile(p) {
			return p
		}
	}
	if lp, err := exec.LookPath("llama-server"); err == nil {
		return lp
	}
	return ""
}
