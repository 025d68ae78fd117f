package booking

import (
	"errors"
	"net/http"
	"strconv"

	"getfit/internal/pkg/response"
	"getfit/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	group := protected.Group("/bookings")
	{
		group.POST("/create", h.Create)
		group.GET("/my-bookings", h.ListMine)
		group.GET("/my-bookings/:id", h.GetMine)
		group.PATCH("/:id/update", h.Update)
		group.PATCH("/:id/cancel", h.Cancel)
		group.GET("/schedule/:schedule_id", h.GetForSchedule)
	}
}

func (h *Handler) Create(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "schedule_id is required")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrScheduleNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Schedule not found")
		case errors.Is(err, ErrScheduleNotActive):
			response.Error(c, http.StatusBadRequest, "SCHEDULE_NOT_BOOKABLE", "This schedule is not open for booking")
		case errors.Is(err, ErrScheduleInPast):
			response.Error(c, http.StatusBadRequest, "SCHEDULE_IN_PAST", "This schedule has already started")
		case errors.Is(err, ErrAlreadyBooked):
			response.Error(c, http.StatusBadRequest, "ALREADY_BOOKED", "You already have a booking for this schedule")
		case errors.Is(err, ErrWaitlistDisabled):
			response.Error(c, http.StatusBadRequest, "SCHEDULE_FULL", "This schedule is full and has no waitlist")
		case errors.Is(err, ErrWaitlistConflict):
			response.Error(c, http.StatusBadRequest, "WAITLIST_CONFLICT", "Could not join the waitlist, please retry")
		default:
			response.Error(c, http.StatusInternalServerError, "BOOKING_FAILED", "Failed to create booking")
		}
		return
	}

	message := "Booking confirmed"
	if b.IsWaitlisted {
		message = "Added to waitlist"
	}
	response.Success(c, http.StatusCreated, message, b)
}

func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var f repository.BookingFilters
	f.Status = c.Query("status")
	f.UpcomingOnly = c.Query("upcoming_only") == "true"
	f.PastOnly = c.Query("past_only") == "true"
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.service.ListMyBookings(c.Request.Context(), userID, f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, "Bookings", bookings)
}

func (h *Handler) GetMine(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := h.service.GetMyBooking(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Failed to load booking")
		return
	}
	response.Success(c, http.StatusOK, "Booking", b)
}

func (h *Handler) Update(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "notes is required")
		return
	}

	b, err := h.service.UpdateBooking(c.Request.Context(), userID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "This booking belongs to another user")
		case errors.Is(err, ErrNotCancellable):
			response.Error(c, http.StatusBadRequest, "BOOKING_IMMUTABLE", "Cancelled or completed bookings cannot be changed")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update booking")
		}
		return
	}
	response.Success(c, http.StatusOK, "Booking updated", b)
}

func (h *Handler) Cancel(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	b, err := h.service.CancelBooking(c.Request.Context(), userID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "This booking belongs to another user")
		case errors.Is(err, ErrNotCancellable):
			response.Error(c, http.StatusBadRequest, "BOOKING_IMMUTABLE", "Cancelled or completed bookings cannot be changed")
		case errors.Is(err, ErrCancellationWindow):
			response.Error(c, http.StatusBadRequest, "CANCELLATION_WINDOW", "Bookings must be cancelled at least 24 hours before start")
		default:
			response.Error(c, http.StatusInternalServerError, "CANCEL_FAILED", "Failed to cancel booking")
		}
		return
	}
	response.Success(c, http.StatusOK, "Booking cancelled", b)
}

func (h *Handler) GetForSchedule(c *gin.Context) {
	userID := c.GetInt64("user_id")
	scheduleID, err := strconv.ParseInt(c.Param("schedule_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid schedule ID")
		return
	}

	b, err := h.service.GetScheduleBooking(c.Request.Context(), userID, scheduleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No booking for this schedule")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Failed to load booking")
		return
	}
	response.Success(c, http.StatusOK, "Booking", b)
}
