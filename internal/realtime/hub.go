// Package realtime tracks live signage WebSocket connections per instance and
// fans broadcast messages out to them.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Publisher publishes an already-serialized broadcast to other server
// processes watching the same instance.
type Publisher interface {
	PublishSignageEvent(signageID string, payload []byte) error
}

// Subscriber subscribes to an instance's cross-process channel and invokes
// handler for events originating elsewhere.
type Subscriber interface {
	SubscribeSignage(signageID string, handler func(payload []byte)) (cancel func(), err error)
}

// Hub maintains signage_id -> set of connections. A connection belongs to one
// instance for its lifetime; instance entries are pruned when their last
// connection leaves. Delivery is best-effort: a viewer that misses an event
// recovers by full reconnect, not incremental patching.
type Hub struct {
	mu        sync.RWMutex
	instances map[string]map[string]*Client
	subs      map[string]func()
	logger    *zap.Logger
	pub       Publisher
	sub       Subscriber
}

// NewHub creates a connection hub. pub and sub may be nil for single-process
// deployments and in tests.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		instances: make(map[string]map[string]*Client),
		subs:      make(map[string]func()),
		logger:    logger,
		pub:       pub,
		sub:       sub,
	}
}

// Register adds a connection to its instance's set and acknowledges it with a
// connected message (sent to that connection only, never broadcast). The
// first connection of an instance starts the cross-process subscription.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.instances[c.SignageID] == nil {
		h.instances[c.SignageID] = make(map[string]*Client)
		if h.sub != nil {
			signageID := c.SignageID
			cancel, err := h.sub.SubscribeSignage(signageID, func(payload []byte) {
				h.deliver(signageID, payload)
			})
			if err == nil {
				h.subs[signageID] = cancel
			} else {
				h.logger.Warn("signage channel subscribe failed",
					zap.String("signage_id", signageID), zap.Error(err))
			}
		}
	}
	h.instances[c.SignageID][c.ID] = c
	h.mu.Unlock()

	if ack, err := json.Marshal(ConnectedMessage{Type: TypeConnected, SignageID: c.SignageID}); err == nil {
		c.enqueue(ack)
	}
	h.logger.Debug("signage viewer connected",
		zap.String("client_id", c.ID), zap.String("signage_id", c.SignageID))
}

// Unregister removes a connection; an instance whose set becomes empty is
// pruned entirely and its cross-process subscription cancelled.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.instances[c.SignageID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.instances, c.SignageID)
			if cancel, ok := h.subs[c.SignageID]; ok {
				cancel()
				delete(h.subs, c.SignageID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("signage viewer disconnected",
		zap.String("client_id", c.ID), zap.String("signage_id", c.SignageID))
}

// Broadcast serializes message once, delivers it to every live connection of
// the instance, and forwards it to other processes. Failures are swallowed;
// a disconnected display simply misses the event.
func (h *Hub) Broadcast(signageID string, message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Warn("broadcast marshal failed", zap.String("signage_id", signageID), zap.Error(err))
		return
	}
	h.deliver(signageID, payload)
	if h.pub != nil {
		if err := h.pub.PublishSignageEvent(signageID, payload); err != nil {
			h.logger.Warn("broadcast publish failed", zap.String("signage_id", signageID), zap.Error(err))
		}
	}
}

// deliver sends pre-serialized bytes to the instance's local connections.
// Connections with a full send buffer are skipped, matching the contract
// that not-ready connections silently miss events.
func (h *Hub) deliver(signageID string, payload []byte) {
	h.mu.RLock()
	clients := h.instances[signageID]
	snapshot := make([]*Client, 0, len(clients))
	for _, c := range clients {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	for _, c := range snapshot {
		c.enqueue(payload)
	}
}

// ViewerCount returns the number of live connections for an instance.
func (h *Hub) ViewerCount(signageID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.instances[signageID])
}
