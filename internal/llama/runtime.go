package llama

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Runtime loads a checkpoint from disk (or names it to a server) and returns
// a Model that can decode from it.
type Runtime interface {
	Load(path string) (Model, error)
}

// Model is a loaded checkpoint.
type Model interface {
	// Predict returns only the continuation of prompt, never the prompt itself.
	Predict(ctx context.Context, prompt string, opts Options) (string, error)
	// Close releases the weights or stops the backing process.
	Close() error
}

// Options captures decoding parameters passed to the runtime.
type Options struct {
	MaxTokens     int
	Temperature   float32
	TopP          float32
	TopK          int
	RepeatPenalty float32
	Stop          []string
	Seed          int
}

// Greedy returns options for deterministic single-sequence decoding of at
// most maxTokens new tokens. Temperature 0 selects the argmax token and a
// repeat penalty of 1 leaves the logits untouched.
func Greedy(maxTokens int) Options {
	return Options{MaxTokens: maxTokens, Temperature: 0, TopP: 1, TopK: 1, RepeatPenalty: 1}
}

// Runtime modes accepted by New.
const (
	ModeInProcess = "inprocess"
	ModeSpawn     = "spawn"
	ModeRemote    = "remote"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultCtxSize      = 4096
	defaultGPULayers    = 9999 // more than any checkpoint has: offload everything
	defaultHost         = "127.0.0.1"
	defaultReadyTimeout = 30 * time.Second
)

// Config encapsulates the tunables of every runtime.
type Config struct {
	Mode string
	// Spawn mode
	Bin          string
	Host         string
	PortStart    int
	PortEnd      int
	ExtraArgs    []string
	ReadyTimeout time.Duration
	// Shared by in-process and spawn
	CtxSize   int
	GPULayers int
	Threads   int
	// Remote mode
	URL    string
	APIKey string
}

func (c Config) withDefaults() Config {
	if c.CtxSize <= 0 {
		c.CtxSize = defaultCtxSize
	}
	if c.GPULayers <= 0 {
		c.GPULayers = defaultGPULayers
	}
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	if strings.TrimSpace(c.Host) == "" {
		c.Host = defaultHost
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = defaultReadyTimeout
	}
	return c
}

// New builds the runtime selected by cfg.Mode. An empty mode means in-process.
func New(cfg Config) (Runtime, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", ModeInProcess:
		return NewInProcess(cfg), nil
	case ModeSpawn:
		return NewSpawn(cfg), nil
	case ModeRemote:
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, fmt.Errorf("llama remote mode requires a server url")
		}
		return NewRemote(cfg.URL, cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown llama runtime mode %q", cfg.Mode)
	}
}

var logger = zerolog.Nop()

// SetLogger installs a structured logger used by the runtimes.
func SetLogger(l zerolog.Logger) { logger = l }
