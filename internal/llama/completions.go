package llama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// completionRequest is the payload for the OpenAI-compatible /v1/completions
// endpoint served by llama-server.
type completionRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
	// llama-server counts new tokens only; the prompt is never echoed back.
	MaxTokens int `json:"max_tokens,omitempty"`
	// Sent even when zero: 0 selects greedy decoding.
	Temperature   float32  `json:"temperature"`
	TopP          float32  `json:"top_p,omitempty"`
	TopK          int      `json:"top_k,omitempty"`
	Stop          []string `json:"stop,omitempty"`
	Seed          int      `json:"seed,omitempty"`
	// Sent even when zero: server defaults penalize repeats.
	RepeatPenalty float32  `json:"repeat_penalty"`
	Stream        bool     `json:"stream"`
}

// streamChoice is a minimal subset of one streamed completion chunk. Plain
// completions carry "text"; chat-style chunks carry "delta.content".
type streamChoice struct {
	Text  string `json:"text"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type streamResponse struct {
	Choices []streamChoice `json:"choices"`
}

// completionClient talks to one llama-server base URL.
type completionClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newCompletionClient(baseURL, apiKey string) *completionClient {
	// Timeout=0: requests carry the caller's context and nothing else.
	return &completionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 0},
	}
}

// complete streams one completion and returns the concatenated fragments.
func (c *completionClient) complete(ctx context.Context, model, prompt string, opts Options) (string, error) {
	payload := completionRequest{
		Model:         model,
		Prompt:        prompt,
		MaxTokens:     opts.MaxTokens,
		Temperature:   opts.Temperature,
		TopP:          opts.TopP,
		TopK:          opts.TopK,
		Stop:          opts.Stop,
		Seed:          opts.Seed,
		RepeatPenalty: opts.RepeatPenalty,
		Stream:        true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llama server http error: %s: %s", resp.Status, string(b))
	}

	var out strings.Builder
	r := bufio.NewReader(resp.Body)
	for {
		line, err := r.ReadString('\n')
		frag, done := parseStreamLine(line)
		if done {
			break
		}
		out.WriteString(frag)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return out.String(), ctx.Err()
			}
			logger.Warn().Str("adapter", "llama_server").Err(err).Msg("stream read error")
			return out.String(), err
		}
	}
	return out.String(), nil
}

// parseStreamLine extracts the text fragment of one SSE line. done is true
// on the terminating "[DONE]" marker.
func parseStreamLine(line string) (frag string, done bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(strings.ToLower(line), "data:") {
		return "", false
	}
	data := strings.TrimSpace(line[len("data:"):])
	if data == "[DONE]" {
		return "", true
	}
	var msg streamResponse
	if err := json.Unmarshal([]byte(data), &msg); err == nil && len(msg.Choices) > 0 {
		ch := msg.Choices[0]
		if ch.Text != "" {
			return ch.Text, false
		}
		return ch.Delta.Content, false
	}
	// llama-server's native stream emits {"content": "..."} objects.
	var native struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(data), &native); err == nil && native.Content != "" {
		return native.Content, false
	}
	logger.Debug().Str("adapter", "llama_server").Str("line", line).Msg("unknown stream line")
	return "", false
}

// healthy checks that the server at baseURL answers GET /v1/models.
func (c *completionClient) healthy(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("llama server health status %d", resp.StatusCode)
	}
	return nil
}
