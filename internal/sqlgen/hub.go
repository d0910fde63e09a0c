package sqlgen

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	// DefaultHubModel is the Ollama tag loaded when no model is given.
	DefaultHubModel = "deepseek-coder:33b-instruct"
	// DefaultHubHost is used when neither WithHubHost nor OLLAMA_HOST is set.
	DefaultHubHost = "http://127.0.0.1:11434"
	// hubTopK is sent with every request; greedy decoding leaves it inert.
	hubTopK = 5
)

// Hub generates SQL with a checkpoint served by an Ollama daemon. The daemon
// applies the model's chat template and stops at its end-of-turn token.
type Hub struct {
	client *api.Client
	model  string
}

type hubOptions struct {
	host       string
	httpClient *http.Client
	timeout    time.Duration
}

// HubOption customizes NewHub.
type HubOption func(*hubOptions)

// WithHubHost sets the daemon URL.
func WithHubHost(host string) HubOption {
	return func(o *hubOptions) { o.host = host }
}

// WithHubHTTPClient sets the HTTP client used to reach the daemon.
func WithHubHTTPClient(c *http.Client) HubOption {
	return func(o *hubOptions) { o.httpClient = c }
}

// WithHubTimeout bounds each round trip to the daemon. Zero means no bound.
func WithHubTimeout(d time.Duration) HubOption {
	return func(o *hubOptions) { o.timeout = d }
}

// NewHub checks that model exists on the daemon and loads it into memory
// until Close. A missing model fails with the daemon's error as is.
func NewHub(ctx context.Context, model string, opts ...HubOption) (*Hub, error) {
	var o hubOptions
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultHubModel
	}
	host := strings.TrimSpace(o.host)
	if host == "" {
		host = strings.TrimSpace(os.Getenv("OLLAMA_HOST"))
	}
	if host == "" {
		host = DefaultHubHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	hc := o.httpClient
	if hc == nil {
		hc = newHubHTTPClient(o.timeout)
	}
	h := &Hub{client: api.NewClient(base, hc), model: model}

	if _, err := h.client.Show(ctx, &api.ShowRequest{Model: model}); err != nil {
		return nil, err
	}
	// An empty chat loads the weights; keep-alive -1 pins them.
	keepAlive := api.Duration{Duration: -1}
	if err := h.client.Chat(ctx, &api.ChatRequest{Model: model, Messages: []api.Message{}, KeepAlive: &keepAlive}, func(api.ChatResponse) error { return nil }); err != nil {
		return nil, err
	}
	logger.Info().Str("backend", "hub").Str("model", model).Str("host", base.String()).Msg("model loaded")
	return h, nil
}

// newHubHTTPClient returns a client for long generations: generous dial and
// header timeouts and an optional overall bound.
func newHubHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 0,
		},
	}
}

func (h *Hub) Generate(ctx context.Context, prompt string) (string, error) {
	return h.chat(ctx, prompt, HubGenerateTokens)
}

func (h *Hub) Debug(ctx context.Context, prompt string) (string, error) {
	return h.chat(ctx, prompt, HubDebugTokens)
}

func (h *Hub) chat(ctx context.Context, prompt string, maxTokens int) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    h.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options: map[string]any{
			"temperature":    0,
			"top_k":          hubTopK,
			"repeat_penalty": 1,
			"num_predict":    maxTokens,
		},
	}
	var out strings.Builder
	err := h.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	text := out.String()
	logger.Info().Str("backend", "hub").Str("model", h.model).Str("text", text).Msg("decoded")
	return text, nil
}

// Close unloads the model from the daemon.
func (h *Hub) Close() error {
	keepAlive := api.Duration{Duration: 0}
	return h.client.Chat(context.Background(), &api.ChatRequest{Model: h.model, Messages: []api.Message{}, KeepAlive: &keepAlive}, func(api.ChatResponse) error { return nil })
}
