package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sqlgen/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
// sqlgen.Generator satisfies it.
type Service interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Debug(ctx context.Context, prompt string) (string, error)
}

// NewMux builds the router. backend is echoed in responses and logs.
func NewMux(svc Service, backend string) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/generate", inflight("/generate", generateHandler(svc, backend)))
	r.Post("/debug", inflight("/debug", debugHandler(svc, backend)))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// generateHandler answers POST /generate.
//
// @Summary      Generate a SQL statement
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Prompt"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /generate [post]
func generateHandler(svc Service, backend string) http.HandlerFunc {
	return sqlHandler(backend, "generate", svc.Generate)
}

// debugHandler answers POST /debug.
//
// @Summary      Repair a SQL statement
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Prompt"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /debug [post]
func debugHandler(svc Service, backend string) http.HandlerFunc {
	return sqlHandler(backend, "debug", svc.Debug)
}

type generateFunc func(ctx context.Context, prompt string) (string, error)

func sqlHandler(backend, mode string, call generateFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Oversized bodies land here too; the size limit is not disclosed.
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		// Prompts are opaque: only a missing one is rejected.
		if req.Prompt == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		lvl := requestLogLevel(r)
		rid := middleware.GetReqID(r.Context())
		start := time.Now()
		if lvl >= LevelInfo {
			z := zlog.Info().Str("path", r.URL.Path).Str("backend", backend).Str("request_id", rid)
			if lvl >= LevelDebug {
				z = z.Str("prompt", req.Prompt)
			}
			z.Msg(mode + " start")
		}

		ctx, cancel := generationContext(r.Context())
		defer cancel()

		stmt, err := call(ctx, req.Prompt)
		if err != nil {
			// Client went away or the server is shutting down: nobody to answer.
			if r.Context().Err() != nil || shuttingDown() {
				return
			}
			status := statusFor(err)
			writeJSONError(w, status, err.Error())
			if lvl >= LevelError {
				zlog.Warn().Int("status", status).Dur("dur", time.Since(start)).Str("request_id", rid).Err(err).Msg(mode + " end")
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.GenerateResponse{Statement: stmt, Backend: backend}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
		if lvl >= LevelInfo {
			z := zlog.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).Str("request_id", rid)
			if lvl >= LevelDebug {
				z = z.Str("statement", stmt)
			}
			z.Msg(mode + " end")
		}
	}
}
