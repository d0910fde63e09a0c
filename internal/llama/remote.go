package llama

import (
	"context"
	"strings"
	"time"
)

// remoteRuntime talks to an already running llama-server. The checkpoint path
// is forwarded as the model name; the server resolves it on its own host.
type remoteRuntime struct {
	client *completionClient
}

// NewRemote constructs a runtime backed by the llama-server at baseURL.
func NewRemote(baseURL, apiKey string) Runtime {
	return &remoteRuntime{client: newCompletionClient(baseURL, apiKey)}
}

func (r *remoteRuntime) Load(path string) (Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	if err := r.client.healthy(5 * time.Second); err != nil {
		return nil, err
	}
	logger.Info().Str("adapter", "llama_remote").Str("url", r.client.baseURL).Str("model", path).Msg("checkpoint attached")
	return &remoteModel{client: r.client, model: path}, nil
}

type remoteModel struct {
	client *completionClient
	model  string
}

func (m *remoteModel) Predict(ctx context.Context, prompt string, opts Options) (string, error) {
	return m.client.complete(ctx, m.model, prompt, opts)
}

// Close is a no-op: the server outlives this process's handle on it.
func (m *remoteModel) Close() error { return nil }
