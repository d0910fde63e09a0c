package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"sqlgen/internal/config"
	"sqlgen/internal/httpapi"
	"sqlgen/internal/sqlgen"
	"sqlgen/pkg/types"
)

// fakeLlamaServer speaks the llama-server completions stream. It answers
// every prompt with reply split into two fragments and records max_tokens.
type fakeLlamaServer struct {
	*httptest.Server
	mu        sync.Mutex
	maxTokens []int
}

func newFakeLlamaServer(t *testing.T, reply string) *fakeLlamaServer {
	t.Helper()
	f := &fakeLlamaServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaxTokens int `json:"max_tokens"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.maxTokens = append(f.maxTokens, req.MaxTokens)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "text/event-stream")
		half := len(reply) / 2
		for _, frag := range []string{reply[:half], reply[half:]} {
			b, _ := json.Marshal(map[string]any{"choices": []map[string]any{{"text": frag}}})
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeLlamaServer) budgets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.maxTokens...)
}

// newStack builds generator and HTTP server from cfg, closing both on cleanup.
func newStack(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	gen, err := sqlgen.New(ctx, cfg)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	t.Cleanup(func() { _ = gen.Close() })
	srv := httptest.NewServer(httpapi.NewMux(gen, cfg.Backend))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, prompt string) (int, types.GenerateResponse) {
	t.Helper()
	payload, _ := json.Marshal(types.GenerateRequest{Prompt: prompt})
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	var out types.GenerateResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("json: %v (%s)", err, b)
		}
	}
	return resp.StatusCode, out
}

func newGeneratorErr(cfg config.Config) (sqlgen.Generator, error) {
	return sqlgen.New(context.Background(), cfg)
}
