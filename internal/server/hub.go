package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

type messageType string

const (
	messageGraph  messageType = "graph"
	messageLayout messageType = "layout"
)

type updateMessage struct {
	Type messageType `json:"type"`
	Data any         `json:"data"`
}

var upgrader = websocket.Upgrader{
	// Editor webviews connect from their own origin scheme.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans update messages out to every connected WebSocket client.
type hub struct {
	logger *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	updates chan updateMessage
}

func newHub(logger *log.Logger) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
		updates: make(chan updateMessage, 256),
	}
}

// run delivers queued messages until the context is canceled.
func (h *hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.updates:
			h.deliver(msg)
		}
	}
}

// broadcast queues a message without blocking; a full queue drops it.
func (h *hub) broadcast(msg updateMessage) {
	select {
	case h.updates <- msg:
	default:
		h.logger.Warn("update queue full, dropping message", "type", msg.Type)
	}
}

func (h *hub) deliver(msg updateMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := client.WriteJSON(msg); err != nil {
			h.logger.Debug("client write failed, dropping", "err", err)
			delete(h.clients, client)
			_ = client.Close()
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		_ = client.Close()
		delete(h.clients, client)
	}
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)

	// Reads are only consumed to notice disconnects.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
