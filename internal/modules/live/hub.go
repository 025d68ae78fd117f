package live

import (
	"sync"

	"github.com/gorilla/websocket"
)

// subscriber owns all frames written to one connection. gorilla/websocket
// allows a single concurrent writer per Conn, so every send goes through the
// write lock.
type subscriber struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *subscriber) write(message interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.conn.WriteJSON(message)
}

// Hub tracks websocket subscribers per schedule. Delivery is best-effort: a
// failed write drops the connection.
type Hub struct {
	subscribers map[int64]map[*websocket.Conn]*subscriber
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[*websocket.Conn]*subscriber),
	}
}

func (h *Hub) Subscribe(scheduleID int64, conn *websocket.Conn) *subscriber {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.subscribers[scheduleID] == nil {
		h.subscribers[scheduleID] = make(map[*websocket.Conn]*subscriber)
	}
	sub := &subscriber{conn: conn}
	h.subscribers[scheduleID][conn] = sub
	return sub
}

func (h *Hub) Unsubscribe(scheduleID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conns, exists := h.subscribers[scheduleID]; exists {
		if conns[conn] != nil {
			_ = conn.Close()
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.subscribers, scheduleID)
		}
	}
}

// Broadcast sends the message to every subscriber of a schedule and returns
// the number of successful deliveries. Concurrent broadcasts are safe: each
// subscriber serializes its own writes.
func (h *Hub) Broadcast(scheduleID int64, message interface{}) int {
	h.mutex.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers[scheduleID]))
	for _, sub := range h.subscribers[scheduleID] {
		subs = append(subs, sub)
	}
	h.mutex.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if err := sub.write(message); err != nil {
			h.Unsubscribe(scheduleID, sub.conn)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) SubscriberCount(scheduleID int64) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.subscribers[scheduleID])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for scheduleID, conns := range h.subscribers {
		for conn := range conns {
			_ = conn.Close()
		}
		delete(h.subscribers, scheduleID)
	}
}
