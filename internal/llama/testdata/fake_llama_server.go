package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// A stand-in for llama-server: answers /v1/models and streams a fixed
// completion that echoes max_tokens back to the caller.
func main() {
	var model, host, port string
	var ctxSize, ngl, threads int
	flag.StringVar(&model, "m", "", "model path")
	flag.StringVar(&host, "host", "127.0.0.1", "host")
	flag.StringVar(&port, "port", "0", "port")
	flag.IntVar(&ctxSize, "c", 0, "context size")
	flag.IntVar(&ngl, "ngl", 0, "gpu layers")
	flag.IntVar(&threads, "t", 0, "threads")
	flag.Parse()

	if os.Getenv("FAKE_LLAMA_FAIL") == "1" {
		fmt.Fprintln(os.Stderr, "error: failed to load model")
		os.Exit(3)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[{"id":"test","object":"model"}]}`))
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaxTokens   int     `json:"max_tokens"`
			Temperature float32 `json:"temperature"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, frag := range []string{" SELECT ", fmt.Sprint(req.MaxTokens), "; -- trailing"} {
			b, _ := json.Marshal(map[string]any{"choices": []map[string]any{{"text": frag}}})
			_, _ = fmt.Fprintf(w, "data: %s\n\n", b)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	})

	srv := &http.Server{Addr: host + ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
