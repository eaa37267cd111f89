// Package reload is the live-reload hub: a socket.io server that tells
// connected browsers to reload after a rebuild.
package reload

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/zishang520/socket.io/v2/socket"
)

// Event is the socket.io event emitted on broadcast.
const Event = "reload"

// Path is where the hub is mounted.
const Path = "/socket.io/"

// Message is the payload of a reload event.
type Message struct {
	Reason string `json:"reason"`
}

// Hub tracks connected browsers and broadcasts reloads to them.
type Hub struct {
	io      *socket.Server
	clients atomic.Int64
	ctx     context.Context
}

// NewHub creates a hub. ctx carries the logger.
func NewHub(ctx context.Context) *Hub {
	h := &Hub{
		io:  socket.NewServer(nil, nil),
		ctx: ctx,
	}
	logger := ctxlog.FromContext(ctx)
	h.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		n := h.clients.Add(1)
		logger.Debug("Browser connected.", "sid", client.Id(), "clients", n)
		client.On("disconnect", func(...any) {
			n := h.clients.Add(-1)
			logger.Debug("Browser disconnected.", "sid", client.Id(), "clients", n)
		})
	})
	return h
}

// Handler serves the socket.io endpoint. Mount it at Path.
func (h *Hub) Handler() http.Handler {
	return h.io.ServeHandler(nil)
}

// Clients is the number of connected browsers.
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

// Broadcast emits a reload event to every connected browser.
func (h *Hub) Broadcast(reason string) {
	ctxlog.FromContext(h.ctx).Info("🔄 Reloading browsers.", "reason", reason, "clients", h.Clients())
	h.io.Emit(Event, Message{Reason: reason})
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.io.Close(nil)
}
