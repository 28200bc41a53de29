package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// NoticeProductsInvalidate tags the message pushed to live sessions after a
// catalog write. Clients treat any other type as reserved and ignore it.
const NoticeProductsInvalidate = "products:invalidate"

// Notice is the wire shape of a live-channel message.
type Notice struct {
	Type string `json:"type"`
}

// Hub owns the set of connected live sessions and fans invalidation notices
// out to them. It implements ports.Broadcaster.
type Hub struct {
	logger *logrus.Logger

	mu       sync.Mutex
	sessions map[string]Session
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger:   logger,
		sessions: make(map[string]Session),
	}
}

// Register adds a session to the active set. Re-registering is a no-op.
func (h *Hub) Register(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.ID()]; ok {
		return
	}
	h.sessions[s.ID()] = s
	connectedClients.Set(float64(len(h.sessions)))
}

// Unregister removes a session; removing an absent session is a no-op.
func (h *Hub) Unregister(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.ID()]; !ok {
		return
	}
	delete(h.sessions, s.ID())
	connectedClients.Set(float64(len(h.sessions)))
}

// Len reports the current session count.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// NotifyAll sends one invalidation notice to every registered session and
// returns the count actually delivered. A failed send is logged and the
// session dropped, never aborting delivery to the rest. The set is never
// mutated mid-pass: failures are collected and unregistered afterward.
func (h *Hub) NotifyAll() int {
	payload, err := json.Marshal(Notice{Type: NoticeProductsInvalidate})
	if err != nil {
		// Static shape; cannot happen in practice.
		if h.logger != nil {
			h.logger.WithError(err).Error("failed to serialize invalidation notice")
		}
		return 0
	}

	h.mu.Lock()
	targets := make([]Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	delivered := 0
	var failed []Session
	for _, s := range targets {
		if err := s.Send(payload); err != nil {
			if h.logger != nil {
				h.logger.WithError(err).WithField("session", s.ID()).Warn("failed to deliver invalidation notice")
			}
			failed = append(failed, s)
			continue
		}
		delivered++
	}

	for _, s := range failed {
		_ = s.Close()
		h.Unregister(s)
	}

	broadcastsTotal.Inc()
	if h.logger != nil {
		h.logger.WithFields(logrus.Fields{"delivered": delivered, "total": len(targets)}).Debug("invalidation notice broadcast")
	}
	return delivered
}
