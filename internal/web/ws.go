package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/sara-labs/sara/internal/state"
)

// broadcastInterval is how often the hub compares the shared state against
// the last pushed payload.
const broadcastInterval = 500 * time.Millisecond

// Hub pushes state updates to connected websocket clients. It exists for
// frontends that prefer push over the /updates polling loop; both carry the
// same payload.
type Hub struct {
	assistant *state.Assistant

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub returns a hub observing assistant.
func NewHub(assistant *state.Assistant) *Hub {
	return &Hub{
		assistant: assistant,
		conns:     make(map[*websocket.Conn]struct{}),
	}
}

// handleWS upgrades the request and streams updates until the client
// disconnects.
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	// Send the current state right away so the client need not wait for the
	// next change.
	ctx := r.Context()
	if err := wsjson.Write(ctx, c, snapshotPayload(h.assistant)); err != nil {
		h.drop(c)
		return
	}

	// Block reading until the peer closes; clients only receive.
	for {
		if _, _, err := c.Read(ctx); err != nil {
			h.drop(c)
			return
		}
	}
}

// drop removes and closes a connection.
func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	_ = c.Close(websocket.StatusNormalClosure, "")
}

// Run watches the shared state and broadcasts a fresh payload whenever it
// changes. It returns when ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	var lastStatus string
	var lastTurns int

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
		}

		payload := snapshotPayload(h.assistant)
		if payload.Status == lastStatus && len(payload.ChatHistory) == lastTurns {
			continue
		}
		lastStatus = payload.Status
		lastTurns = len(payload.ChatHistory)
		h.broadcast(ctx, payload)
	}
}

// broadcast writes payload to every connection, dropping the ones that
// fail.
func (h *Hub) broadcast(ctx context.Context, payload updatePayload) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := wsjson.Write(wctx, c, payload)
		cancel()
		if err != nil {
			h.drop(c)
		}
	}
}

// closeAll closes every connection on shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
