// Package websocket pushes stage progress and dataset refresh events to
// connected dashboard clients.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"edupulse/internal/infrastructure"
)

// Message type constants shared with the dashboard frontend
const (
	TypeConnection    = "connection"
	TypeProgress      = "stage:progress"
	TypeStageStatus   = "stage:status"
	TypeStageComplete = "stage:complete"
	TypeDataUpdate    = "data_update"
	TypeError         = "error"
)

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	// Optional gauge of connected clients.
	connGauge prometheus.Gauge

	totalConnections int64
	messagesSent     int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// SetConnectionGauge wires the connected-client gauge. Must be called before
// Start.
func (h *Hub) SetConnectionGauge(g prometheus.Gauge) {
	h.connGauge = g
}

// Start starts the hub's main loop
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Stop terminates the hub loop and disconnects all clients
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	h.mu.Lock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			if h.connGauge != nil {
				h.connGauge.Set(float64(count))
			}

			ctx := context.Background()
			if client.traceID != "" {
				ctx = infrastructure.WithTraceID(ctx, client.traceID)
			}
			h.logger.InfoContext(ctx, "client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			connMsg := map[string]interface{}{
				"type": TypeConnection,
				"data": map[string]interface{}{
					"status":    "connected",
					"client_id": client.id,
				},
				"timestamp": time.Now().Format(time.RFC3339),
				"trace_id":  client.traceID,
			}
			if jsonData, err := json.Marshal(connMsg); err == nil {
				h.mu.Lock()
				if h.clients[client] {
					select {
					case client.send <- jsonData:
					default:
						h.logger.WarnContext(ctx, "connection message dropped, client buffer full",
							slog.String("client_id", client.id))
					}
				}
				h.mu.Unlock()
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				if h.connGauge != nil {
					h.connGauge.Set(float64(count))
				}

				h.logger.Info("client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			// The lock is held across the whole fan-out so Stop cannot
			// close a send channel mid-loop. Sends are non-blocking.
			h.mu.Lock()
			failCount := 0
			for client := range h.clients {
				select {
				case client.send <- message:
					h.messagesSent++
				default:
					failCount++
					// Slow consumer, drop it.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}
			h.mu.Unlock()

			if failCount > 0 {
				h.logger.Warn("some clients failed to receive broadcast",
					slog.Int("fail_count", failCount))
			}
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastProgress sends a stage progress update to all clients
func (h *Hub) BroadcastProgress(stage string, progress int, message string) {
	h.broadcastJSON(map[string]interface{}{
		"type": TypeProgress,
		"data": map[string]interface{}{
			"stage":    stage,
			"progress": progress,
			"message":  message,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// BroadcastStageStatus sends a stage lifecycle event (pending, running,
// completed, failed) to all clients.
func (h *Hub) BroadcastStageStatus(stage, status, message string) {
	h.broadcastJSON(map[string]interface{}{
		"type": TypeStageStatus,
		"data": map[string]interface{}{
			"stage":   stage,
			"status":  status,
			"message": message,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// BroadcastDataUpdate notifies clients that the cleaned dataset changed and
// the dashboard should refresh.
func (h *Hub) BroadcastDataUpdate(rows int) {
	h.broadcastJSON(map[string]interface{}{
		"type": TypeDataUpdate,
		"data": map[string]interface{}{
			"action": "refresh",
			"rows":   rows,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// BroadcastError sends an error event to all clients
func (h *Hub) BroadcastError(stage, message string) {
	h.broadcastJSON(map[string]interface{}{
		"type": TypeError,
		"data": map[string]interface{}{
			"stage":   stage,
			"message": message,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Hub) broadcastJSON(message map[string]interface{}) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("error marshaling message",
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- jsonData:
	case <-h.quit:
	}
}
