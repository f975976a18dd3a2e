// Package realtime fans attendance events out to every connected admin
// dashboard. Delivery is best-effort and at-most-once per live connection;
// events are never persisted or replayed.
package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vietanh2810/campmeet-api/internal/domain"
)

// Conn is the slice of *websocket.Conn the hub needs. Tests substitute
// their own implementation.
type Conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type subscriber struct {
	conn Conn
	send chan domain.AttendanceEvent
	done chan struct{}
}

// Hub is the process-wide connection registry. It is constructed once and
// injected into the handlers that need it; there is no package-level
// singleton.
type Hub struct {
	heartbeat    time.Duration
	writeTimeout time.Duration

	mu    sync.RWMutex
	subs  map[string]*subscriber
	stop  chan struct{}
	once  sync.Once
	fails atomic.Int64
}

func NewHub(heartbeat, writeTimeout time.Duration) *Hub {
	return &Hub{
		heartbeat:    heartbeat,
		writeTimeout: writeTimeout,
		subs:         make(map[string]*subscriber),
		stop:         make(chan struct{}),
	}
}

// Run drives the heartbeat until Close is called. Callers start it on its
// own goroutine.
func (h *Hub) Run() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Broadcast(domain.NewHeartbeatEvent())
		case <-h.stop:
			return
		}
	}
}

// Close stops the heartbeat and drops every connection.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.stop)
	})

	h.mu.Lock()
	for handle, sub := range h.subs {
		delete(h.subs, handle)
		close(sub.done)
	}
	h.mu.Unlock()
}

// Subscribe registers a connection and immediately queues a connected event
// for the new subscriber only. The returned handle identifies the
// connection until Unsubscribe.
func (h *Hub) Subscribe(conn Conn) string {
	handle := uuid.NewString()
	sub := &subscriber{
		conn: conn,
		send: make(chan domain.AttendanceEvent, 64),
		done: make(chan struct{}),
	}

	// Queue the connected event before the subscriber is visible to
	// Broadcast, so it is always the first message on the wire.
	sub.send <- domain.NewConnectedEvent()

	h.mu.Lock()
	h.subs[handle] = sub
	h.mu.Unlock()

	go h.writePump(handle, sub)

	return handle
}

// Unsubscribe drops the connection, typically on transport-level
// disconnect. Unknown handles are ignored.
func (h *Hub) Unsubscribe(handle string) {
	h.drop(handle, false)
}

// Broadcast queues the event for every registered connection. A subscriber
// whose buffer is full is treated as a failed write: it is dropped and
// counted, and delivery to the others continues. Broadcast never returns an
// error to its caller.
func (h *Hub) Broadcast(event domain.AttendanceEvent) {
	h.mu.RLock()
	targets := make(map[string]*subscriber, len(h.subs))
	for handle, sub := range h.subs {
		targets[handle] = sub
	}
	h.mu.RUnlock()

	for handle, sub := range targets {
		select {
		case sub.send <- event:
		default:
			h.drop(handle, true)
		}
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}

// FailedWrites returns the number of connections dropped because a write
// failed or timed out.
func (h *Hub) FailedWrites() int64 {
	return h.fails.Load()
}

func (h *Hub) drop(handle string, failed bool) {
	h.mu.Lock()
	sub, ok := h.subs[handle]
	if ok {
		delete(h.subs, handle)
		close(sub.done)
	}
	h.mu.Unlock()

	if ok && failed {
		h.fails.Add(1)
	}
}

// writePump serializes writes for one connection. Writes carry a deadline
// so a stalled client cannot block the pump indefinitely.
func (h *Hub) writePump(handle string, sub *subscriber) {
	defer sub.conn.Close() //nolint:errcheck

	for {
		select {
		case event := <-sub.send:
			if err := sub.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
				h.drop(handle, true)
				return
			}
			if err := sub.conn.WriteJSON(event); err != nil {
				zap.L().Debug("dropping realtime connection", zap.String("handle", handle), zap.Error(err))
				h.drop(handle, true)
				return
			}
		case <-sub.done:
			return
		}
	}
}
