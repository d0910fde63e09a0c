// Package llama loads local checkpoints and decodes from them. It is split
// into small files by concern:
//
//   - runtime.go: Runtime/Model interfaces, Options, Config and New.
//   - errors.go: error types and helpers (ErrDependencyUnavailable, ErrEmptyPath).
//   - completions.go: OpenAI-compatible /v1/completions streaming client.
//   - remote.go: runtime backed by an already running llama-server.
//   - spawn.go: runtime that starts one llama-server subprocess per checkpoint.
//   - inprocess_llama.go: in-process go-llama.cpp runtime.
//
// Build tags:
//
//   - In-process llama: `-tags=llama` links libllama through go-llama.cpp
//     (see llama_cgo.go for the rpath hints). Without the tag a CGO-free stub
//     is compiled that still validates the checkpoint path and then reports
//     the missing runtime.
//
// A Model owns its loaded checkpoint (weights in memory or a server
// process) until Close is called.
package llama
