package review

import (
	"context"

	"getfit/internal/domain"
)

// ReviewRepositoryInterface — only the methods the review service uses.
type ReviewRepositoryInterface interface {
	Create(ctx context.Context, rv *domain.ClassReview) error
	ExistsForUserSchedule(ctx context.Context, userID, scheduleID int64) (bool, error)
	ListByClass(ctx context.Context, classID int64, limit, offset int) ([]domain.ClassReview, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.ClassReview, error)
	StatsByClass(ctx context.Context, classID int64) (*domain.ReviewStats, error)
}

// BookingEligibilityReader gates reviews on attendance.
type BookingEligibilityReader interface {
	HasCompletedBooking(ctx context.Context, userID, scheduleID int64) (bool, error)
}

type ScheduleReader interface {
	GetByID(ctx context.Context, id int64) (*domain.ClassSchedule, error)
}

type ClassReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Class, error)
}
