package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadPrompt(t *testing.T) {
	if p, err := readPrompt([]string{"Q:", "count", "rows"}, strings.NewReader("ignored")); err != nil || p != "Q: count rows" {
		t.Fatalf("args prompt = %q, %v", p, err)
	}
	if p, err := readPrompt([]string{"-"}, strings.NewReader("Q: from stdin\n")); err != nil || p != "Q: from stdin\n" {
		t.Fatalf("stdin prompt = %q, %v", p, err)
	}
	if _, err := readPrompt(nil, strings.NewReader("  \n")); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestGenerateCommand_HostedBackend(t *testing.T) {
	var models []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		models = append(models, body.Model)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"SELECT count(*) FROM t"},"finish_reason":"stop"}]}`))
	}))
	defer ts.Close()

	cfgPath := filepath.Join(t.TempDir(), "sqlgen.yaml")
	cfg := "backend: hosted\nhosted:\n  base_url: " + ts.URL + "/v1\n  api_key: sk-cli\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "")

	for _, mode := range []string{"generate", "debug"} {
		var stdout, stderr bytes.Buffer
		root := newRootCmd(strings.NewReader(""), &stdout, &stderr)
		root.SetArgs([]string{mode, "--config", cfgPath, "--log-level", "error", "Q: count rows"})
		if err := root.Execute(); err != nil {
			t.Fatalf("%s: %v (stderr=%s)", mode, err, stderr.String())
		}
		if got := strings.TrimSpace(stdout.String()); got != "SELECT count(*) FROM t" {
			t.Fatalf("%s stdout=%q", mode, got)
		}
	}
	if len(models) != 2 || models[0] != "gpt-3.5-turbo" || models[1] != "gpt-4" {
		t.Fatalf("unexpected models: %v", models)
	}
}

func TestUnknownBackendFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd(strings.NewReader(""), &stdout, &stderr)
	root.SetArgs([]string{"generate", "--backend", "mainframe", "Q"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown sqlgen backend") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}
