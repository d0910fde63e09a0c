package sqlgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sqlgen/internal/config"
	"sqlgen/internal/llama"
)

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.Config{Backend: "oracle"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestNew_Hosted(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	g, err := New(context.Background(), config.Config{Backend: "hosted", Hosted: config.HostedConfig{APIKey: "sk-cfg", BaseURL: "http://127.0.0.1:1/v1"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer g.Close()
	if _, ok := g.(*instrumented); !ok {
		t.Fatalf("generator must be instrumented, got %T", g)
	}
	if os.Getenv(APIKeyEnv) != "sk-cfg" {
		t.Fatalf("configured key not exported")
	}
}

func TestNew_Hub(t *testing.T) {
	f := newFakeOllama(t, "deepseek-coder:1.3b", "SELECT 7")
	g, err := New(testCtx(t), config.Config{Backend: "hub", Hub: config.HubConfig{Model: "deepseek-coder:1.3b", Host: f.srv.URL, TimeoutSeconds: 5}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got, err := g.Generate(testCtx(t), "p"); err != nil || got != "SELECT 7" {
		t.Fatalf("generate = %q, %v", got, err)
	}
}

func TestNew_CheckpointMissingPath(t *testing.T) {
	cfg := config.Config{
		Backend:    "checkpoint",
		Checkpoint: filepath.Join(t.TempDir(), "absent"),
		Llama:      config.LlamaConfig{Mode: "spawn", Bin: "/bin/false"},
	}
	if _, err := New(context.Background(), cfg); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	cfg.Llama.Mode = "warp"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown llama mode")
	}
}

func TestRuntimeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	rc, err := RuntimeConfig(config.LlamaConfig{Mode: llama.ModeSpawn, Bin: "~/bin/llama-server", ReadyTimeoutSeconds: 12, GPULayers: 4})
	if err != nil {
		t.Fatalf("runtime config: %v", err)
	}
	if rc.Bin != filepath.Join(home, "bin", "llama-server") || rc.ReadyTimeout != 12*time.Second || rc.GPULayers != 4 || rc.Mode != llama.ModeSpawn {
		t.Fatalf("unexpected runtime config: %+v", rc)
	}
}
