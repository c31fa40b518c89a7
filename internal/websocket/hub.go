package websocket

import (
	"encoding/json"
	"log/slog"
	stdsync "sync"

	"github.com/mlecomte/foyer/internal/sync"
)

// Message is the envelope written to clients. Every message carries a full
// snapshot; clients replace their local list state wholesale on receipt.
type Message struct {
	Type     string        `json:"type"`
	Snapshot sync.Snapshot `json:"snapshot"`
}

// Hub groups WebSocket clients by household. Each household with at least one
// connected client holds a single live engine subscription; its snapshots are
// fanned out to every client of that household.
type Hub struct {
	engine *sync.Engine
	logger *slog.Logger

	mu    stdsync.Mutex
	rooms map[int64]*room
}

type room struct {
	clients map[*Client]struct{}
	sub     *sync.Subscription
}

// NewHub creates a Hub backed by the given sync engine.
func NewHub(engine *sync.Engine, logger *slog.Logger) *Hub {
	return &Hub{
		engine: engine,
		logger: logger,
		rooms:  make(map[int64]*room),
	}
}

// Register adds a client to its household's room. The first client of a
// household opens the engine subscription; that subscription's initial
// snapshot reaches the client through the normal broadcast path. Clients
// joining an already-live room get the current snapshot directly.
func (h *Hub) Register(userID int64, c *Client) error {
	h.mu.Lock()
	rm, live := h.rooms[c.householdID]
	if !live {
		rm = &room{clients: make(map[*Client]struct{})}
		h.rooms[c.householdID] = rm
	}
	rm.clients[c] = struct{}{}
	h.mu.Unlock()

	if !live {
		sub, err := h.engine.Subscribe(userID, c.householdID, func(snap sync.Snapshot) {
			h.broadcast(snap)
		})
		if err != nil {
			h.Unregister(c)
			return err
		}
		h.mu.Lock()
		rm.sub = sub
		h.mu.Unlock()
		return nil
	}

	snap, err := h.engine.Snapshot(c.householdID)
	if err != nil {
		h.logger.Error("snapshot on join", "household_id", c.householdID, "error", err)
		return nil
	}
	h.send(c, snap)
	return nil
}

// Unregister removes a client and closes its send channel. The last client
// leaving a household cancels the engine subscription.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	rm, ok := h.rooms[c.householdID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := rm.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(rm.clients, c)
	close(c.send)

	var sub *sync.Subscription
	if len(rm.clients) == 0 {
		sub = rm.sub
		delete(h.rooms, c.householdID)
	}
	h.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

// broadcast delivers a snapshot to every client of its household.
func (h *Hub) broadcast(snap sync.Snapshot) {
	data, err := json.Marshal(Message{Type: "snapshot", Snapshot: snap})
	if err != nil {
		h.logger.Error("marshal snapshot", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[snap.HouseholdID]
	if !ok {
		return
	}
	for c := range rm.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop rather than block the engine
		}
	}
}

// send delivers a snapshot to a single client.
func (h *Hub) send(c *Client, snap sync.Snapshot) {
	data, err := json.Marshal(Message{Type: "snapshot", Snapshot: snap})
	if err != nil {
		h.logger.Error("marshal snapshot", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// ClientCount returns the number of connected clients across all households.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, rm := range h.rooms {
		n += len(rm.clients)
	}
	return n
}
