package handler

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/johndosdos/murmur/internal/chat"
	ws "github.com/johndosdos/murmur/internal/websocket"
)

// ServeWs handles the client's websocket connection upgrade.
func ServeWs(room *chat.Room, log *slog.Logger, opts ws.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Any origin may connect; there is no authentication to protect.
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.WarnContext(ctx, "failed to upgrade connection", "error", err)
			return
		}

		c := ws.NewClient(conn, room, log, opts)
		log.DebugContext(ctx, "upgraded connection", "conn", c.ID)

		// We block in Serve because the request context is cancelled as soon
		// as we return from the handler.
		if err := c.Serve(ctx); err != nil {
			log.WarnContext(ctx, "connection not served", "conn", c.ID, "error", err)
		}
	}
}
