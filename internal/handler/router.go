package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/johndosdos/murmur/internal/chat"
	ws "github.com/johndosdos/murmur/internal/websocket"
)

// RouterConfig collects what the router serves.
type RouterConfig struct {
	Room      *chat.Room
	Metrics   http.Handler
	StaticDir string
	Client    ws.Options
	Log       *slog.Logger
}

// NewRouter wires the HTTP routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)

	r.Get("/ws", ServeWs(cfg.Room, cfg.Log, cfg.Client))
	r.Get("/healthz", ServeHealth(cfg.Log))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
