// Package handler contains the HTTP endpoints of the chat server.
package handler

import (
	"log/slog"
	"net/http"
)

// ServeHealth reports liveness.
func ServeHealth(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			log.DebugContext(r.Context(), "failed to write health response", "error", err)
		}
	}
}
