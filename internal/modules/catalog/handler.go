package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/categories", h.ListCategories)
	v1.GET("/categories/:id", h.GetCategory)

	classes := v1.Group("/classes")
	{
		classes.GET("", h.ListClasses)
		classes.GET("/search", h.SearchClasses)
		classes.GET("/schedule/:id", h.GetScheduleSnapshot)
		classes.GET("/:id", h.GetClass)
		classes.GET("/:id/schedules", h.ListClassSchedules)
	}

	v1.GET("/schedules", h.ListSchedules)
	v1.GET("/calendar", h.Calendar)
}

func (h *Handler) RegisterInstructorRoutes(instructor *gin.RouterGroup) {
	instructor.GET("/dashboard", h.InstructorDashboard)
	instructor.GET("/performance", h.InstructorPerformance)

	schedules := instructor.Group("/schedules")
	{
		schedules.POST("", h.CreateSchedule)
		schedules.PATCH("/:id/cancel", h.CancelSchedule)
		schedules.PATCH("/:id/complete", h.CompleteSchedule)
	}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	categories := admin.Group("/categories")
	{
		categories.GET("", h.AdminListCategories)
		categories.POST("", h.CreateCategory)
		categories.PATCH("/:id", h.UpdateCategory)
	}

	classes := admin.Group("/classes")
	{
		classes.POST("", h.CreateClass)
		classes.PATCH("/:id", h.UpdateClass)
	}

	admin.GET("/analytics", h.Analytics)
}

// ---- public ----

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list categories")
		return
	}
	response.Success(c, http.StatusOK, "Categories", categories)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID")
		return
	}

	category, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Failed to load category")
		return
	}
	response.Success(c, http.StatusOK, "Category", category)
}

func classFiltersFromQuery(c *gin.Context) repository.ClassFilters {
	var f repository.ClassFilters
	f.Query = c.Query("q")
	f.CategoryID, _ = strconv.ParseInt(c.Query("category_id"), 10, 64)
	f.InstructorID, _ = strconv.ParseInt(c.Query("instructor_id"), 10, 64)
	f.DifficultyLevel = c.Query("difficulty_level")
	f.LocationType = c.Query("location_type")
	f.FeaturedOnly = c.Query("featured") == "true"
	if v := c.Query("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &p
		}
	}
	if v := c.Query("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &p
		}
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return f
}

func (h *Handler) ListClasses(c *gin.Context) {
	classes, total, err := h.service.ListClasses(c.Request.Context(), classFiltersFromQuery(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list classes")
		return
	}
	response.Success(c, http.StatusOK, "Classes", gin.H{
		"classes": classes,
		"total":   total,
	})
}

func (h *Handler) SearchClasses(c *gin.Context) {
	f := classFiltersFromQuery(c)
	if f.Query == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "q is required")
		return
	}
	classes, total, err := h.service.ListClasses(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "SEARCH_FAILED", "Failed to search classes")
		return
	}
	response.Success(c, http.StatusOK, "Search results", gin.H{
		"classes": classes,
		"total":   total,
	})
}

func (h *Handler) GetClass(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid class ID")
		return
	}

	class, err := h.service.GetClass(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Class not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Failed to load class")
		return
	}
	response.Success(c, http.StatusOK, "Class", class)
}

// parseTimeParam accepts RFC3339 or a bare date.
func parseTimeParam(v string) (*time.Time, bool) {
	if v == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t, true
	}
	return nil, false
}

func scheduleFiltersFromQuery(c *gin.Context) (repository.ScheduleFilters, bool) {
	var f repository.ScheduleFilters
	f.ClassID, _ = strconv.ParseInt(c.Query("class_id"), 10, 64)
	f.CategoryID, _ = strconv.ParseInt(c.Query("category_id"), 10, 64)
	f.InstructorID, _ = strconv.ParseInt(c.Query("instructor_id"), 10, 64)
	f.Status = c.Query("status")

	from, ok := parseTimeParam(c.Query("from"))
	if !ok {
		return f, false
	}
	to, ok := parseTimeParam(c.Query("to"))
	if !ok {
		return f, false
	}
	f.From, f.To = from, to
	return f, true
}

func (h *Handler) ListSchedules(c *gin.Context) {
	f, ok := scheduleFiltersFromQuery(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from/to must be RFC3339 or YYYY-MM-DD")
		return
	}

	schedules, err := h.service.ListSchedules(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list schedules")
		return
	}
	response.Success(c, http.StatusOK, "Schedules", schedules)
}

func (h *Handler) ListClassSchedules(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid class ID")
		return
	}

	f, ok := scheduleFiltersFromQuery(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from/to must be RFC3339 or YYYY-MM-DD")
		return
	}
	f.ClassID = id
	if f.From == nil {
		now := time.Now()
		f.From = &now
	}

	schedules, err := h.service.ListSchedules(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list schedules")
		return
	}
	response.Success(c, http.StatusOK, "Class schedules", schedules)
}

func (h *Handler) Calendar(c *gin.Context) {
	f, ok := scheduleFiltersFromQuery(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from/to must be RFC3339 or YYYY-MM-DD")
		return
	}
	if f.From == nil {
		now := time.Now()
		f.From = &now
	}
	if f.To == nil {
		to := f.From.AddDate(0, 0, 14)
		f.To = &to
	}

	days, err := h.service.Calendar(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "CALENDAR_FAILED", "Failed to build calendar")
		return
	}
	response.Success(c, http.StatusOK, "Calendar", days)
}

func (h *Handler) GetScheduleSnapshot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid schedule ID")
		return
	}

	snap, err := h.service.GetScheduleSnapshot(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Schedule not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Failed to load schedule")
		return
	}
	response.Success(c, http.StatusOK, "Schedule availability", snap)
}

// ---- instructor ----

func (h *Handler) InstructorDashboard(c *gin.Context) {
	userID := c.GetInt64("user_id")

	dashboard, err := h.service.InstructorDashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "DASHBOARD_FAILED", "Failed to build dashboard")
		return
	}
	response.Success(c, http.StatusOK, "Instructor dashboard", dashboard)
}

func (h *Handler) InstructorPerformance(c *gin.Context) {
	userID := c.GetInt64("user_id")

	perf, err := h.service.InstructorPerformance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "PERFORMANCE_FAILED", "Failed to load performance")
		return
	}
	response.Success(c, http.StatusOK, "Instructor performance", perf)
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	userID := c.GetInt64("user_id")
	role := c.GetString("role")

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "class_id and start_time are required")
		return
	}

	schedule, err := h.service.CreateSchedule(c.Request.Context(), userID, role, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Class not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only schedule your own classes")
		case errors.Is(err, ErrScheduleInPast):
			response.Error(c, http.StatusBadRequest, "SCHEDULE_IN_PAST", "Start time must be in the future")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid schedule data")
		default:
			response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create schedule")
		}
		return
	}
	response.Success(c, http.StatusCreated, "Schedule created", schedule)
}

func (h *Handler) CancelSchedule(c *gin.Context) {
	userID := c.GetInt64("user_id")
	role := c.GetString("role")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid schedule ID")
		return
	}

	var req CancelScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "reason is required")
		return
	}

	if err := h.service.CancelSchedule(c.Request.Context(), userID, role, id, req.Reason); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Schedule not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only cancel your own schedules")
		case errors.Is(err, ErrScheduleNotMutable):
			response.Error(c, http.StatusBadRequest, "SCHEDULE_IMMUTABLE", "Schedule is already cancelled or completed")
		default:
			response.Error(c, http.StatusInternalServerError, "CANCEL_FAILED", "Failed to cancel schedule")
		}
		return
	}
	response.Success(c, http.StatusOK, "Schedule cancelled", nil)
}

func (h *Handler) CompleteSchedule(c *gin.Context) {
	userID := c.GetInt64("user_id")
	role := c.GetString("role")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid schedule ID")
		return
	}

	if err := h.service.CompleteSchedule(c.Request.Context(), userID, role, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Schedule not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only complete your own schedules")
		case errors.Is(err, ErrScheduleNotEnded):
			response.Error(c, http.StatusBadRequest, "SCHEDULE_NOT_STARTED", "Schedule has not started yet")
		case errors.Is(err, ErrScheduleNotMutable):
			response.Error(c, http.StatusBadRequest, "SCHEDULE_IMMUTABLE", "Schedule is already cancelled or completed")
		default:
			response.Error(c, http.StatusInternalServerError, "COMPLETE_FAILED", "Failed to complete schedule")
		}
		return
	}
	response.Success(c, http.StatusOK, "Schedule completed", nil)
}

// ---- admin ----

func (h *Handler) AdminListCategories(c *gin.Context) {
	categories, err := h.service.ListAllCategories(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list categories")
		return
	}
	response.Success(c, http.StatusOK, "Categories", categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category data")
			return
		}
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create category")
		return
	}
	response.Success(c, http.StatusCreated, "Category created", category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category data")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update category")
		}
		return
	}
	response.Success(c, http.StatusOK, "Category updated", category)
}

func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Instructor or category not found")
		case errors.Is(err, ErrNotInstructor):
			response.Error(c, http.StatusBadRequest, "NOT_INSTRUCTOR", "Assigned user is not an instructor")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid class data")
		default:
			response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create class")
		}
		return
	}
	response.Success(c, http.StatusCreated, "Class created", class)
}

func (h *Handler) UpdateClass(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid class ID")
		return
	}

	var req UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	class, err := h.service.UpdateClass(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Class or category not found")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid class data")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update class")
		}
		return
	}
	response.Success(c, http.StatusOK, "Class updated", class)
}

func (h *Handler) Analytics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	analytics, err := h.service.Analytics(c.Request.Context(), days)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "ANALYTICS_FAILED", "Failed to build analytics")
		return
	}
	response.Success(c, http.StatusOK, "Analytics", analytics)
}
