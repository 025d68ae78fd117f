package review

import (
	"errors"
	"net/http"
	"strconv"

	"getfit/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/reviews/class/:class_id", h.GetClassReviews)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	group := protected.Group("/reviews")
	{
		group.POST("/create", h.Create)
		group.GET("/my-reviews", h.ListMine)
	}
}

func (h *Handler) Create(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "schedule_id and rating (1-5) are required")
		return
	}

	rv, err := h.service.CreateReview(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrScheduleNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Schedule not found")
		case errors.Is(err, ErrNotEligible):
			response.Error(c, http.StatusBadRequest, "NOT_ELIGIBLE", "Only attendees of a completed session can leave a review")
		case errors.Is(err, ErrAlreadyReviewed):
			response.Error(c, http.StatusBadRequest, "ALREADY_REVIEWED", "You already reviewed this session")
		default:
			response.Error(c, http.StatusInternalServerError, "REVIEW_FAILED", "Failed to create review")
		}
		return
	}

	response.Success(c, http.StatusCreated, "Review created", rv)
}

func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetInt64("user_id")

	reviews, err := h.service.ListMyReviews(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list reviews")
		return
	}
	response.Success(c, http.StatusOK, "Reviews", reviews)
}

func (h *Handler) GetClassReviews(c *gin.Context) {
	classID, err := strconv.ParseInt(c.Param("class_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid class ID")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.service.GetClassReviews(c.Request.Context(), classID, limit, offset)
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Class not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to load reviews")
		return
	}
	response.Success(c, http.StatusOK, "Class reviews", result)
}
