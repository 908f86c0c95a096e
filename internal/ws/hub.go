package ws

import (
	"sync"
)

// Hub tracks every connected viewer. It holds no durable state: events are
// pushed to whoever is connected right now, and late joiners start from the
// next event.
type Hub struct {
	mu    sync.RWMutex
	conns map[*clientConn]struct{}
}

func NewHub() *Hub { return &Hub{conns: map[*clientConn]struct{}{}} }

func (h *Hub) Join(c *clientConn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Leave(c *clientConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.rawConn.Close()
}

// Broadcast is called by the bus bridge. Best effort: a failed write drops
// the connection rather than blocking the rest.
func (h *Hub) Broadcast(msg []byte) {
	// snapshot the current connections
	h.mu.RLock()
	conns := make([]*clientConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	// do the I/O outside the lock
	var failed []*clientConn
	for _, c := range conns {
		if err := c.write(msg); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		h.Leave(c)
	}
}

// Count reports the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
