package review

import "getfit/internal/domain"

type CreateReviewRequest struct {
	ScheduleID int64  `json:"schedule_id" binding:"required,gt=0"`
	Rating     int    `json:"rating" binding:"required,gte=1,lte=5"`
	Review     string `json:"review"`
}

type ClassReviewsResponse struct {
	Reviews    []domain.ClassReview `json:"reviews"`
	Statistics *domain.ReviewStats  `json:"statistics"`
}
