//go:build llama

package llama

import (
	"context"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"sqlgen/internal/registry"
)

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

// inProcessRuntime holds global config used to load a checkpoint.
type inProcessRuntime struct {
	cfg Config
}

// NewInProcess constructs a runtime that loads checkpoints into this process.
func NewInProcess(cfg Config) Runtime {
	return &inProcessRuntime{cfg: cfg.withDefaults()}
}

// inProcessModel owns the loaded weights. go-llama.cpp contexts are not safe
// for concurrent Predict calls, so decodes are serialized.
type inProcessModel struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
}

func (r *inProcessRuntime) Load(path string) (Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	path, err := registry.Resolve(path)
	if err != nil {
		return nil, err
	}
	// f16 KV cache and every layer on the accelerator when one is present.
	mo := []llama.ModelOption{
		llama.SetContext(r.cfg.CtxSize),
		llama.SetGPULayers(r.cfg.GPULayers),
		llama.EnableF16Memory,
	}
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("adapter", "llama_inprocess").Str("model", path).Int("gpu_layers", r.cfg.GPULayers).Msg("checkpoint loaded")
	return &inProcessModel{model: m, threads: r.cfg.Threads}, nil
}

func (s *inProcessModel) Predict(ctx context.Context, prompt string, opts Options) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return "", ErrDependencyUnavailable("llama model not loaded")
	}
	// Stop decoding once the caller is gone.
	s.model.SetTokenCallback(func(string) bool { return ctx.Err() == nil })
	text, err := s.model.Predict(prompt, predictOptions(opts, s.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return text, nil
}

func (s *inProcessModel) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// predictOptions converts Options into go-llama.cpp options. Temperature is
// passed through as is: llama.cpp samples greedily at 0.
func predictOptions(opts Options, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(atLeastOne(opts.MaxTokens)),
		llama.SetThreads(atLeastOne(threads)),
		llama.SetTopP(orFloat(opts.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(orInt(opts.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(opts.Temperature),
		llama.SetPenalty(orFloat(opts.RepeatPenalty, llama.DefaultOptions.Penalty)),
	}
	if opts.Seed != 0 {
		po = append(po, llama.SetSeed(opts.Seed))
	}
	if len(opts.Stop) > 0 {
		po = append(po, llama.SetStopWords(opts.Stop...))
	}
	return po
}
