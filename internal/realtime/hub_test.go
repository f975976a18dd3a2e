package realtime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/campmeet-api/internal/domain"
)

// chanConn surfaces every written event on a channel.
type chanConn struct {
	events chan domain.AttendanceEvent
}

func newChanConn() *chanConn {
	return &chanConn{events: make(chan domain.AttendanceEvent, 128)}
}

func (c *chanConn) WriteJSON(v interface{}) error {
	c.events <- v.(domain.AttendanceEvent)
	return nil
}

func (c *chanConn) SetWriteDeadline(_ time.Time) error { return nil }

func (c *chanConn) Close() error { return nil }

func (c *chanConn) next(t *testing.T) domain.AttendanceEvent {
	t.Helper()

	select {
	case event := <-c.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return domain.AttendanceEvent{}
	}
}

// errConn fails every write.
type errConn struct{}

func (errConn) WriteJSON(_ interface{}) error { return errors.New("broken pipe") }

func (errConn) SetWriteDeadline(_ time.Time) error { return nil }

func (errConn) Close() error { return nil }

func newTestHub() *Hub {
	return NewHub(time.Hour, time.Second)
}

func TestSubscribeDeliversConnectedEvent(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	conn := newChanConn()
	hub.Subscribe(conn)

	event := conn.next(t)
	assert.Equal(t, domain.EventConnected, event.Type)
	assert.Equal(t, 1, hub.ConnectionCount())
}

func TestConnectedEventIsFirstUnderConcurrentBroadcast(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				hub.Broadcast(domain.AttendanceEvent{Type: domain.EventNewScan})
			}
		}
	}()

	for i := 0; i < 20; i++ {
		conn := newChanConn()
		hub.Subscribe(conn)
		assert.Equal(t, domain.EventConnected, conn.next(t).Type)
	}
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	first := newChanConn()
	second := newChanConn()
	hub.Subscribe(first)
	hub.Subscribe(second)

	// Drain the connected events.
	require.Equal(t, domain.EventConnected, first.next(t).Type)
	require.Equal(t, domain.EventConnected, second.next(t).Type)

	hub.Broadcast(domain.AttendanceEvent{Type: domain.EventNewScan, RegistrationID: 7})

	for _, conn := range []*chanConn{first, second} {
		event := conn.next(t)
		assert.Equal(t, domain.EventNewScan, event.Type)
		assert.Equal(t, uint(7), event.RegistrationID)
	}
}

func TestUnsubscribe(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	conn := newChanConn()
	handle := hub.Subscribe(conn)
	require.Equal(t, 1, hub.ConnectionCount())

	hub.Unsubscribe(handle)
	assert.Equal(t, 0, hub.ConnectionCount())
	assert.Equal(t, int64(0), hub.FailedWrites(), "clean unsubscribe is not a failed write")

	// Idempotent.
	hub.Unsubscribe(handle)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestFailedWriteDropsConnection(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	hub.Subscribe(errConn{})

	// The queued connected event fails to write, which drops the subscriber.
	assert.Eventually(t, func() bool {
		return hub.ConnectionCount() == 0 && hub.FailedWrites() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastSurvivesOneBadConnection(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	good := newChanConn()
	hub.Subscribe(good)
	hub.Subscribe(errConn{})

	require.Equal(t, domain.EventConnected, good.next(t).Type)

	assert.Eventually(t, func() bool {
		return hub.ConnectionCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(domain.AttendanceEvent{Type: domain.EventVerification})
	assert.Equal(t, domain.EventVerification, good.next(t).Type)
}

func TestHeartbeat(t *testing.T) {
	hub := NewHub(20*time.Millisecond, time.Second)
	defer hub.Close()
	go hub.Run()

	conn := newChanConn()
	hub.Subscribe(conn)

	require.Equal(t, domain.EventConnected, conn.next(t).Type)
	assert.Equal(t, domain.EventHeartbeat, conn.next(t).Type)
}

func TestCloseDropsEverything(t *testing.T) {
	hub := newTestHub()

	hub.Subscribe(newChanConn())
	hub.Subscribe(newChanConn())
	require.Equal(t, 2, hub.ConnectionCount())

	hub.Close()
	assert.Equal(t, 0, hub.ConnectionCount())
}
