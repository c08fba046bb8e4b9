package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// wsFrame is one message on the navigation WebSocket.
type wsFrame struct {
	Type   string `json:"type"`
	Change any    `json:"change,omitempty"`
}

// Stream handles GET /navigation/ws: the navigation change feed over a
// WebSocket for shells that cannot consume Server-Sent Events. A "ready"
// frame is sent once subscribed, then one "navigation" frame per change.
func (h *NavigationHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Store.Subscribe()
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "feed_closed", Err: err})
		return
	}
	defer sub.Close()

	opts := &websocket.AcceptOptions{}
	if len(h.OriginPatterns) > 0 {
		opts.OriginPatterns = h.OriginPatterns
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		loggerOr(h.Logger).DebugContext(r.Context(), "websocket accept failed", "error", err)
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := writeFrame(ctx, conn, wsFrame{Type: "ready"}); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "write_failed")
		return
	}

	// The client never sends anything meaningful; reading detects its close.
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case <-readErr:
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case change, ok := <-sub.C():
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "shutting down")
				return
			}
			if err := writeFrame(ctx, conn, wsFrame{Type: "navigation", Change: change}); err != nil {
				_ = conn.Close(websocket.StatusInternalError, "write_failed")
				return
			}
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, frame wsFrame) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, frame)
}
