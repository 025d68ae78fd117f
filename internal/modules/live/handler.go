package live

import (
	"errors"
	"net/http"
	"strconv"

	"getfit/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the SPA origins allowed by CORS; the
	// websocket handshake carries no credentials beyond the JWT query.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	service   *Service
	hub       *Hub
	schedules ScheduleReader
}

func NewHandler(service *Service, hub *Hub, schedules ScheduleReader) *Handler {
	return &Handler{service: service, hub: hub, schedules: schedules}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws/schedules/:id", h.Subscribe)
}

// Subscribe upgrades the connection and streams availability updates for one
// schedule. The initial state is pushed immediately after the upgrade.
func (h *Handler) Subscribe(c *gin.Context) {
	scheduleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid schedule ID")
		return
	}

	schedule, err := h.schedules.GetByID(c.Request.Context(), scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Schedule not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "SUBSCRIBE_FAILED", "Failed to subscribe")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	sub := h.hub.Subscribe(scheduleID, conn)
	defer h.hub.Unsubscribe(scheduleID, conn)

	// The initial push goes through the subscriber's write lock so it cannot
	// interleave with a broadcast triggered by a concurrent booking.
	_ = sub.write(AvailabilityUpdate{
		ScheduleID:     schedule.ID,
		BookedSlots:    schedule.BookedSlots,
		MaxCapacity:    schedule.MaxCapacity,
		AvailableSlots: schedule.AvailableSlots(),
		Status:         string(schedule.Status),
	})

	// Drain client frames until the peer disconnects; subscribers are
	// read-only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
