// Package events implements the broadcast channel fanning product and
// dashboard events out to connected observers.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/realtime-catalog/internal/model"
	"github.com/fairyhunter13/realtime-catalog/internal/obs"
)

// ActiveCounter supplies the active-user count shown on the dashboard.
type ActiveCounter interface {
	CountActiveSince(t time.Time) int
}

// Envelope is the wire frame sent to observers.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ProductCreated is broadcast after a product write is durable.
type ProductCreated struct {
	Product   model.Product `json:"product"`
	Timestamp time.Time     `json:"timestamp"`
}

// DashboardUpdate is the summary pushed on connect, disconnect, and request.
type DashboardUpdate struct {
	ActiveUsers      int       `json:"activeUsers"`
	ConnectedClients int       `json:"connectedClients"`
	Timestamp        time.Time `json:"timestamp"`
}

// LiveActivity is the relay of an observer-reported activity.
type LiveActivity struct {
	UserID    string    `json:"userId"`
	Activity  string    `json:"activity"`
	Timestamp time.Time `json:"timestamp"`
}

// inbound is what observers send to the channel.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// sendBuffer bounds each observer's outbound queue; frames to a full buffer
// are dropped rather than blocking the sender.
const sendBuffer = 32

type client struct {
	id   string
	send chan Envelope
}

// Hub owns the connection registry. Delivery is best-effort: no acks, no
// replay for observers that attach after an event fired.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	counter ActiveCounter
	window  time.Duration
}

// NewHub creates a Hub. window is how far back a login still counts as
// active for the dashboard summary.
func NewHub(counter ActiveCounter, window time.Duration) *Hub {
	return &Hub{clients: make(map[string]*client), counter: counter, window: window}
}

// Register attaches an observer and returns its connection id plus the
// channel its frames arrive on. Every attach pushes a fresh dashboard
// summary to all observers.
func (h *Hub) Register() (string, <-chan Envelope) {
	c := &client{id: uuid.NewString(), send: make(chan Envelope, sendBuffer)}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	obs.Logger.Info("client_connected", "conn_id", c.id)
	h.broadcastDashboard()
	return c.id, c.send
}

// Unregister detaches an observer and closes its channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	obs.Logger.Info("client_disconnected", "conn_id", id)
	h.broadcastDashboard()
}

// ConnectedCount returns the live connection count.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast fans an event out to every connected observer.
func (h *Hub) Broadcast(event string, data any) {
	env := Envelope{Event: event, Data: data}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- env:
		default:
			obs.Logger.Warn("frame_dropped", "conn_id", c.id, "event", event)
		}
	}
}

// Send delivers an event to a single observer. Returns false if the
// connection is gone or its buffer is full.
func (h *Hub) Send(id, event string, data any) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	if !ok {
		return false
	}
	select {
	case c.send <- Envelope{Event: event, Data: data}:
		return true
	default:
		obs.Logger.Warn("frame_dropped", "conn_id", id, "event", event)
		return false
	}
}

// NotifyProductCreated broadcasts the creation event followed by a dashboard
// summary. This is the one hook the mutation pipeline calls.
func (h *Hub) NotifyProductCreated(p model.Product) {
	h.Broadcast("productCreated", ProductCreated{Product: p, Timestamp: time.Now().UTC()})
	h.broadcastDashboard()
}

// HandleInbound processes a raw frame received from an observer.
func (h *Hub) HandleInbound(connID string, raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		obs.Logger.Warn("inbound_frame_invalid", "conn_id", connID, "error", err)
		return
	}
	switch msg.Event {
	case "requestDashboardUpdate":
		h.Send(connID, "dashboardUpdate", h.summary())
	case "userActivity":
		var act struct {
			UserID   string `json:"userId"`
			Activity string `json:"activity"`
		}
		if err := json.Unmarshal(msg.Data, &act); err != nil {
			obs.Logger.Warn("inbound_frame_invalid", "conn_id", connID, "error", err)
			return
		}
		h.Broadcast("liveActivity", LiveActivity{UserID: act.UserID, Activity: act.Activity, Timestamp: time.Now().UTC()})
	default:
		obs.Logger.Warn("inbound_event_unknown", "conn_id", connID, "event", msg.Event)
	}
}

func (h *Hub) summary() DashboardUpdate {
	active := 0
	if h.counter != nil {
		active = h.counter.CountActiveSince(time.Now().Add(-h.window))
	}
	return DashboardUpdate{
		ActiveUsers:      active,
		ConnectedClients: h.ConnectedCount(),
		Timestamp:        time.Now().UTC(),
	}
}

func (h *Hub) broadcastDashboard() {
	h.Broadcast("dashboardUpdate", h.summary())
}
