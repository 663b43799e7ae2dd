package ws

import "sync"

// Hub tracks which users are currently reachable. It is a pure liveness
// index: no persistence, no history.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client // userID -> active client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register installs c as the active client for userID. A prior registration
// is displaced silently: last connection wins.
func (h *Hub) Register(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = c
}

// Unregister removes the registration only if c is still the active client,
// so a superseded connection tearing down late cannot wipe out a newer one.
func (h *Hub) Unregister(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == c {
		delete(h.clients, userID)
	}
}

// Send pushes payload to userID's active client if there is one. The lock
// covers only the map lookup, never the push itself.
func (h *Hub) Send(userID string, payload []byte) bool {
	h.mu.RLock()
	c := h.clients[userID]
	h.mu.RUnlock()
	if c == nil {
		return false
	}
	return c.TrySend(payload)
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
