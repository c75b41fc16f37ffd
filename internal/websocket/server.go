package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"

	"github.com/johndosdos/murmur/internal/chat"
)

// MaxFrameSize bounds a single inbound frame.
const MaxFrameSize = 64 << 10

// ReadMessage reads the incoming data from the websocket stream and submits
// it to the room. It raises the Disconnect event when the stream ends.
func (c *Client) ReadMessage(ctx context.Context) {
	defer func() {
		// The request context may already be gone; the room still needs to
		// hear about the disconnect.
		leaveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.room.Submit(leaveCtx, chat.Disconnect{Conn: c.ID}); err != nil && !errors.Is(err, chat.ErrRoomClosed) {
			c.log.Warn("failed to submit disconnect", "error", err)
		}
		c.conn.CloseNow()
	}()

	c.conn.SetReadLimit(MaxFrameSize)

	for {
		msgType, p, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure &&
				status != websocket.StatusGoingAway &&
				status != -1 {
				c.log.Warn("websocket read failed", "error", err, "status", status)
			}
			return
		}

		// The app only supports text format.
		if msgType != websocket.MessageText {
			continue
		}

		ev, err := DecodeEvent(c.ID, p)
		if err != nil {
			c.log.Debug("skipping client frame", "error", err)
			continue
		}

		if err := c.room.Submit(ctx, ev); err != nil {
			c.log.Warn("failed to submit event", "error", err)
			return
		}
	}
}
