package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"getfit/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScheduleReader struct {
	schedule *domain.ClassSchedule
}

func (s *stubScheduleReader) GetByID(ctx context.Context, id int64) (*domain.ClassSchedule, error) {
	return s.schedule, nil
}

// dialTestSubscriber stands up a real websocket pair and registers the server
// side with the hub.
func dialTestSubscriber(t *testing.T, hub *Hub, scheduleID int64) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Subscribe(scheduleID, conn)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(scheduleID) == 1
	}, time.Second, 5*time.Millisecond)

	return client
}

// Two bookings landing at the same instant must not interleave frames on a
// shared connection; run with -race.
func TestBroadcast_ConcurrentBroadcastsOneSubscriber(t *testing.T) {
	hub := NewHub()
	client := dialTestSubscriber(t, hub, 1)

	const broadcasts = 16
	var wg sync.WaitGroup
	for i := 0; i < broadcasts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Broadcast(1, AvailabilityUpdate{ScheduleID: 1, MaxCapacity: 10})
		}()
	}
	wg.Wait()

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < broadcasts; i++ {
		var update AvailabilityUpdate
		require.NoError(t, client.ReadJSON(&update))
		assert.Equal(t, int64(1), update.ScheduleID)
	}
}

func TestScheduleChanged_ConcurrentMutationsDeliverAll(t *testing.T) {
	hub := NewHub()
	svc := NewService(hub, &stubScheduleReader{schedule: &domain.ClassSchedule{
		ID:          1,
		MaxCapacity: 2,
		BookedSlots: 1,
		Status:      domain.ScheduleActive,
	}})
	client := dialTestSubscriber(t, hub, 1)

	svc.ScheduleChanged(1)
	svc.ScheduleChanged(1)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 2; i++ {
		var update AvailabilityUpdate
		require.NoError(t, client.ReadJSON(&update))
		assert.Equal(t, int64(1), update.ScheduleID)
		assert.Equal(t, 1, update.AvailableSlots)
		assert.Equal(t, string(domain.ScheduleActive), update.Status)
	}
}

func TestScheduleChanged_NoSubscribersSkipsLoad(t *testing.T) {
	hub := NewHub()
	svc := NewService(hub, &stubScheduleReader{})

	// No subscriber, so the nil stub schedule must never be dereferenced.
	svc.ScheduleChanged(42)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, hub.SubscriberCount(42))
}
