package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/johndosdos/murmur/internal/chat"
	"github.com/johndosdos/murmur/internal/model"
	"github.com/johndosdos/murmur/internal/session"
)

// Options tune a Client.
type Options struct {
	Buffer       int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Client is the transport side of one websocket connection.
type Client struct {
	ID   session.ConnID
	conn *websocket.Conn
	room *chat.Room
	log  *slog.Logger
	send chan model.Envelope
	opts Options
}

// NewClient returns a Client with a fresh connection id.
func NewClient(conn *websocket.Conn, room *chat.Room, log *slog.Logger, opts Options) *Client {
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	id := session.ConnID(uuid.NewString())
	return &Client{
		ID:   id,
		conn: conn,
		room: room,
		log:  log.With("conn", id),
		send: make(chan model.Envelope, opts.Buffer),
		opts: opts,
	}
}

// Deliver queues env for writing. It never blocks; a full queue drops the
// frame.
func (c *Client) Deliver(env model.Envelope) bool {
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// Serve attaches the client to the room and pumps frames until the
// connection closes or ctx is cancelled.
func (c *Client) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.room.Attach(ctx, c.ID, c); err != nil {
		c.conn.Close(websocket.StatusTryAgainLater, "room unavailable")
		return err
	}

	go c.WriteMessage(ctx)
	if c.opts.PingInterval > 0 {
		go c.keepalive(ctx)
	}

	// Block on reads; the request context ends when the handler returns.
	c.ReadMessage(ctx)
	return nil
}

// WriteMessage writes queued frames to the outgoing websocket stream.
func (c *Client) WriteMessage(ctx context.Context) {
	for {
		select {
		case env := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
			err := wsjson.Write(writeCtx, c.conn, env)
			cancel()
			if err != nil {
				c.log.WarnContext(ctx, "failed to write frame",
					"error", err,
					"event", env.Event)
				c.conn.CloseNow()
				return
			}

		case <-ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "context cancelled")
			return
		}
	}
}

// keepalive pings the peer so proxies do not reap an idle connection.
func (c *Client) keepalive(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, c.opts.PingInterval/2)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					c.log.WarnContext(ctx, "failed to send ping signal", "error", err)
				}
				c.conn.CloseNow()
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
