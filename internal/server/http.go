package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/feudhq/feud/internal/config"
	"github.com/feudhq/feud/internal/game"
	"github.com/feudhq/feud/internal/logging"
)

// NewHTTPServer wires the game routes plus health and metrics endpoints.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, handlers *game.HTTPHandlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/games", handlers.CreateGame)
	mux.HandleFunc("GET /api/games/{code}", handlers.GetGame)
	mux.HandleFunc("DELETE /api/games/{code}", handlers.DeleteGame)
	mux.HandleFunc("POST /api/games/{code}/questions", handlers.AddQuestion)
	mux.HandleFunc("POST /api/games/{code}/start", handlers.StartGame)
	mux.HandleFunc("POST /api/games/{code}/next", handlers.NextQuestion)
	mux.HandleFunc("POST /api/games/{code}/guess", handlers.Guess)

	handler := corsMiddleware(cfg.CORS, mux)
	handler = requestLogger(logger, handler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

// requestLogger injects the app logger into the request context and emits one
// line per request.
func requestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), logger)))
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

// corsMiddleware applies the configured CORS policy; the host/player web
// clients are served from a different origin than the API.
func corsMiddleware(cfg config.CORS, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(cfg.AllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
