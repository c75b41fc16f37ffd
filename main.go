// Package main our entry point.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/johndosdos/murmur/internal/chat"
	"github.com/johndosdos/murmur/internal/config"
	"github.com/johndosdos/murmur/internal/handler"
	"github.com/johndosdos/murmur/internal/metrics"
	"github.com/johndosdos/murmur/internal/sanitize"
	ws "github.com/johndosdos/murmur/internal/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %+v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting application...")

	m := metrics.New()

	// room.Run is our central loop that is always listening for room events.
	room := chat.NewRoom(logger, sanitize.NewPipeline(sanitize.NewMarkdown()),
		chat.WithRecorder(m),
		chat.WithInboundBuffer(cfg.InboundBuffer))
	go room.Run(ctx)

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: handler.NewRouter(handler.RouterConfig{
			Room:      room,
			Metrics:   m.Handler(),
			StaticDir: cfg.StaticDir,
			Client: ws.Options{
				Buffer:       cfg.ClientBuffer,
				WriteTimeout: cfg.WriteTimeout,
				PingInterval: cfg.PingInterval,
			},
			Log: logger,
		}),
		// Cancel websocket request contexts on shutdown; hijacked
		// connections are not tracked by Shutdown.
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received; shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}

	logger.Info("Server stopped")
}
