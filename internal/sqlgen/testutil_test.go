package sqlgen

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"sqlgen/internal/llama"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

// fakeModel records Predict options and replies with out.
type fakeModel struct {
	out    string
	err    error
	calls  []llama.Options
	closed bool
}

func (m *fakeModel) Predict(_ context.Context, _ string, opts llama.Options) (string, error) {
	m.calls = append(m.calls, opts)
	return m.out, m.err
}

func (m *fakeModel) Close() error {
	m.closed = true
	return nil
}

// fakeRuntime hands out model, or fails with err.
type fakeRuntime struct {
	model  *fakeModel
	err    error
	loaded string
}

func (r *fakeRuntime) Load(path string) (llama.Model, error) {
	r.loaded = path
	if r.err != nil {
		return nil, r.err
	}
	return r.model, nil
}

// fakeChat records chat requests and replies with content.
type fakeChat struct {
	content string
	err     error
	empty   bool
	reqs    []openai.ChatCompletionRequest
}

func (c *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.reqs = append(c.reqs, req)
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	if c.empty {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c.content}},
	}}, nil
}

// stubGenerator is a Generator with fixed results.
type stubGenerator struct {
	out    string
	err    error
	closed bool
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) { return s.out, s.err }
func (s *stubGenerator) Debug(context.Context, string) (string, error)    { return s.out, s.err }

func (s *stubGenerator) Close() error {
	s.closed = true
	return nil
}

var errBackend = errors.New("backend exploded")
