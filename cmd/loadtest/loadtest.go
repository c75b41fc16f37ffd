// Command loadtest connects a crowd of websocket clients to a running chat
// server and reports how many broadcasts each one received.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/johndosdos/murmur/internal/model"
)

type options struct {
	url      string
	clients  int
	messages int
	interval time.Duration
	settle   time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "drive concurrent chat clients against a server",
		Example: `  # 50 clients, 20 messages each
  $ loadtest --url ws://localhost:8000/ws --clients 50 --messages 20`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.url, "url", "ws://localhost:8000/ws", "websocket endpoint")
	f.IntVar(&opts.clients, "clients", 10, "concurrent connections")
	f.IntVar(&opts.messages, "messages", 10, "messages sent per connection")
	f.DurationVar(&opts.interval, "interval", 50*time.Millisecond, "pause between messages of one connection")
	f.DurationVar(&opts.settle, "settle", 2*time.Second, "how long to keep reading after the last send")

	return cmd
}

func run(ctx context.Context, opts options) error {
	if opts.clients <= 0 || opts.messages < 0 {
		return fmt.Errorf("clients must be positive and messages non-negative")
	}

	var received atomic.Int64
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for i := range opts.clients {
		g.Go(func() error {
			return drive(ctx, i, opts, &received)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	want := int64(opts.clients) * int64(opts.clients) * int64(opts.messages)
	fmt.Printf("clients=%d sent=%d received=%d expected=%d elapsed=%s\n",
		opts.clients, opts.clients*opts.messages, received.Load(), want, time.Since(start).Round(time.Millisecond))
	return nil
}

// drive runs a single client: join, send, then read until the settle period
// expires.
func drive(ctx context.Context, n int, opts options, received *atomic.Int64) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, opts.url, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("client %d: dial %s: %w", n, opts.url, err)
	}
	defer conn.CloseNow()

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var env struct {
				Event string `json:"event"`
			}
			if err := wsjson.Read(readCtx, conn, &env); err != nil {
				return
			}
			if env.Event == model.EventChatMessage {
				received.Add(1)
			}
		}
	}()

	if err := wsjson.Write(ctx, conn, model.Envelope{Event: model.EventJoin}); err != nil {
		return fmt.Errorf("client %d: join: %w", n, err)
	}

	for i := range opts.messages {
		text := fmt.Sprintf("client %d message %d", n, i)
		if err := wsjson.Write(ctx, conn, model.Envelope{
			Event: model.EventChatMessage,
			Data:  model.ChatInput{Text: text},
		}); err != nil {
			return fmt.Errorf("client %d: send: %w", n, err)
		}

		select {
		case <-time.After(opts.interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case <-time.After(opts.settle):
	case <-ctx.Done():
	}
	stopReading()
	<-done

	conn.Close(websocket.StatusNormalClosure, "done")
	return nil
}
