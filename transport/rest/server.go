package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Routes - the HTTP routes of the service.
func Routes(logger *slog.Logger, h Handlers) http.Handler {
	mux := http.NewServeMux()

	wrap := func(next http.HandlerFunc) http.HandlerFunc {
		return recoverer(logger, accessLog(logger, next))
	}

	mux.HandleFunc("GET /ping", wrap(h.PingHandler))
	mux.HandleFunc("POST /api/scores", wrap(h.SubmitScore))
	mux.HandleFunc("GET /api/rankings/{songId}/{diffKey}", wrap(h.Ranking))
	mux.HandleFunc("GET /api/profiles/{nickname}", wrap(h.GetProfile))
	mux.HandleFunc("PUT /api/profiles/{nickname}", wrap(h.UpdateProfile))
	mux.HandleFunc("GET /api/rooms", wrap(h.ListRooms))

	return mux
}

// Start - serves handler on port until ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func accessLog(logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next(ww, r)

		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration", time.Since(start),
		)
	}
}

func recoverer(logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic while serving request", "error", err, "path", r.URL.Path)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next(w, r)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (that *statusWriter) WriteHeader(code int) {
	that.status = code
	that.ResponseWriter.WriteHeader(code)
}
