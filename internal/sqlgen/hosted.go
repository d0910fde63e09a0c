package sqlgen

import (
	"context"
	"math"
	"net/http"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultHostedModel answers Generate unless another model is given.
	DefaultHostedModel = openai.GPT3Dot5Turbo
	// HostedDebugModel always answers Debug.
	HostedDebugModel = openai.GPT4
	// APIKeyEnv holds the hosted API credential.
	APIKeyEnv = "OPENAI_API_KEY"
)

var (
	hostedGenerateStop = []string{"Q:"}
	hostedDebugStop    = []string{"#", ";", "\n\n"}
)

// zeroTemperature stands in for 0: go-openai omits a zero temperature from
// the request and the API then samples at its default of 1.
const zeroTemperature = math.SmallestNonzeroFloat32

// ChatCompleter is the part of the OpenAI client Hosted calls.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Hosted generates SQL with a hosted chat-completion API. Content is
// returned verbatim.
type Hosted struct {
	client ChatCompleter
	model  string
}

type hostedOptions struct {
	apiKey     *string
	baseURL    string
	httpClient *http.Client
	client     ChatCompleter
}

// HostedOption customizes NewHosted.
type HostedOption func(*hostedOptions)

// WithAPIKey exports key as OPENAI_API_KEY before the client reads it.
func WithAPIKey(key string) HostedOption {
	return func(o *hostedOptions) { o.apiKey = &key }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(u string) HostedOption {
	return func(o *hostedOptions) { o.baseURL = u }
}

// WithHTTPClient sets the HTTP client used by the OpenAI client.
func WithHTTPClient(c *http.Client) HostedOption {
	return func(o *hostedOptions) { o.httpClient = c }
}

// WithChatClient replaces the OpenAI client entirely.
func WithChatClient(c ChatCompleter) HostedOption {
	return func(o *hostedOptions) { o.client = c }
}

// NewHosted configures the credential and client once. The credential is
// always read from the environment, after WithAPIKey has written it there.
func NewHosted(model string, opts ...HostedOption) *Hosted {
	var o hostedOptions
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultHostedModel
	}
	if o.apiKey != nil {
		if err := os.Setenv(APIKeyEnv, *o.apiKey); err != nil {
			logger.Warn().Str("backend", "hosted").Str("env", APIKeyEnv).Err(err).Msg("api key not exported; using existing environment")
		}
	}
	client := o.client
	if client == nil {
		cfg := openai.DefaultConfig(os.Getenv(APIKeyEnv))
		if o.baseURL != "" {
			cfg.BaseURL = strings.TrimRight(o.baseURL, "/")
		}
		if o.httpClient != nil {
			cfg.HTTPClient = o.httpClient
		}
		client = openai.NewClientWithConfig(cfg)
	}
	return &Hosted{client: client, model: model}
}

func (h *Hosted) Generate(ctx context.Context, prompt string) (string, error) {
	return h.complete(ctx, h.model, prompt, HostedGenerateTokens, hostedGenerateStop)
}

func (h *Hosted) Debug(ctx context.Context, prompt string) (string, error) {
	return h.complete(ctx, HostedDebugModel, prompt, HostedDebugTokens, hostedDebugStop)
}

func (h *Hosted) complete(ctx context.Context, model, prompt string, maxTokens int, stop []string) (string, error) {
	resp, err := h.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:        maxTokens,
		Temperature:      zeroTemperature,
		TopP:             1,
		N:                1,
		Stream:           false,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
		Stop:             stop,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op: the credential lives in the process environment.
func (h *Hosted) Close() error { return nil }
