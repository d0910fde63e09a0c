package sqlgen

import (
	"context"
	"fmt"
	"time"

	"sqlgen/internal/common/fsutil"
	"sqlgen/internal/config"
	"sqlgen/internal/llama"
)

// New builds the generator selected by cfg.Backend and wraps it with metrics.
// cfg is completed with WithDefaults first.
func New(ctx context.Context, cfg config.Config) (Generator, error) {
	cfg = cfg.WithDefaults()
	var (
		g   Generator
		err error
	)
	switch cfg.Backend {
	case config.BackendCheckpoint:
		g, err = newCheckpointFromConfig(cfg)
	case config.BackendHosted:
		opts := []HostedOption{}
		if cfg.Hosted.APIKey != "" {
			opts = append(opts, WithAPIKey(cfg.Hosted.APIKey))
		}
		if cfg.Hosted.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.Hosted.BaseURL))
		}
		g = NewHosted(cfg.Hosted.Model, opts...)
	case config.BackendHub:
		g, err = NewHub(ctx, cfg.Hub.Model,
			WithHubHost(cfg.Hub.Host),
			WithHubTimeout(time.Duration(cfg.Hub.TimeoutSeconds)*time.Second),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	logger.Info().Str("backend", cfg.Backend).Msg("generator ready")
	return Instrument(g, cfg.Backend), nil
}

func newCheckpointFromConfig(cfg config.Config) (Generator, error) {
	path, err := fsutil.ExpandHome(cfg.Checkpoint)
	if err != nil {
		return nil, err
	}
	rc, err := RuntimeConfig(cfg.Llama)
	if err != nil {
		return nil, err
	}
	rt, err := llama.New(rc)
	if err != nil {
		return nil, err
	}
	return NewCheckpoint(path, rt)
}

// RuntimeConfig maps the llama config section onto llama.Config.
func RuntimeConfig(c config.LlamaConfig) (llama.Config, error) {
	bin, err := fsutil.ExpandHome(c.Bin)
	if err != nil {
		return llama.Config{}, err
	}
	return llama.Config{
		Mode:         c.Mode,
		Bin:          bin,
		Host:         c.Host,
		PortStart:    c.PortStart,
		PortEnd:      c.PortEnd,
		ExtraArgs:    c.ExtraArgs,
		ReadyTimeout: time.Duration(c.ReadyTimeoutSeconds) * time.Second,
		CtxSize:      c.CtxSize,
		GPULayers:    c.GPULayers,
		Threads:      c.Threads,
		URL:          c.URL,
		APIKey:       c.APIKey,
	}, nil
}
