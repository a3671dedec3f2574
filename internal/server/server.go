package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Start runs the HTTP server on the given port and blocks until the context
// is canceled or the server fails. On cancellation the server is shut down
// gracefully with a bounded timeout.
func Start(ctx context.Context, log *slog.Logger, handler http.Handler, port int) {
	log.InfoContext(ctx, "Starting HTTP server", "port", port)

	readTimeout := 5
	writeTimeout := 30
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	var err error
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(readTimeout)*time.Second)
		defer cancel()
		log.InfoContext(ctx, "HTTP server shutting down.")
		if err = srv.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "HTTP server failed to shutdown", "error", err)
			return
		}
	case err = <-serverErr:
		log.ErrorContext(ctx, "HTTP server failed", "error", err)
	}
}
