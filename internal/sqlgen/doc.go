// Package sqlgen turns a prompt into a single SQL statement using one of
// three model backends:
//
//   - Checkpoint: a local causal-LM checkpoint (sqlcoder) served by a
//     llama.Runtime. Output is truncated to one statement.
//   - Hosted: an OpenAI-compatible chat-completion API. Output is returned
//     verbatim.
//   - Hub: a checkpoint served by an Ollama daemon (deepseek-coder). Output
//     is returned verbatim and logged.
//
// Every variant implements Generator. Construction acquires the backend
// handle once; Close releases it. Backend errors are returned unmodified and
// nothing is retried.
package sqlgen
