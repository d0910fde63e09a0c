//go:build !llama

package llama

// This file provides a no-CGO stub for the in-process runtime. It is compiled
// when the 'llama' build tag is NOT set, keeping default builds CGO-free.

import (
	"strings"

	"sqlgen/internal/registry"
)

const llamaBuilt = false

type inProcessRuntime struct {
	cfg Config
}

// NewInProcess returns a runtime that validates the checkpoint path and then
// refuses to load it: llama support is not linked into this binary.
func NewInProcess(cfg Config) Runtime {
	return &inProcessRuntime{cfg: cfg.withDefaults()}
}

func (r *inProcessRuntime) Load(path string) (Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	// Same failure a real load would hit first.
	if _, err := registry.Resolve(path); err != nil {
		return nil, err
	}
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
