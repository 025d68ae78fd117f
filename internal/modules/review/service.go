package review

import (
	"context"
	"errors"
	"strings"

	"getfit/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Service struct {
	reviews   ReviewRepositoryInterface
	bookings  BookingEligibilityReader
	schedules ScheduleReader
	classes   ClassReader
}

func NewService(
	reviews ReviewRepositoryInterface,
	bookings BookingEligibilityReader,
	schedules ScheduleReader,
	classes ClassReader,
) *Service {
	return &Service{reviews: reviews, bookings: bookings, schedules: schedules, classes: classes}
}

// CreateReview accepts one review per (user, schedule), only after the user
// actually attended: a completed booking for that schedule. The class FK is
// copied from the schedule at creation.
func (s *Service) CreateReview(ctx context.Context, userID int64, req CreateReviewRequest) (*domain.ClassReview, error) {
	schedule, err := s.schedules.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	completed, err := s.bookings.HasCompletedBooking(ctx, userID, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, ErrNotEligible
	}

	exists, err := s.reviews.ExistsForUserSchedule(ctx, userID, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	rv := &domain.ClassReview{
		UserID:     userID,
		ScheduleID: req.ScheduleID,
		ClassID:    schedule.ClassID,
		Rating:     req.Rating,
		Review:     strings.TrimSpace(req.Review),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	return rv, nil
}

func (s *Service) ListMyReviews(ctx context.Context, userID int64) ([]domain.ClassReview, error) {
	return s.reviews.ListByUser(ctx, userID)
}

// GetClassReviews returns a class's reviews plus aggregate statistics.
func (s *Service) GetClassReviews(ctx context.Context, classID int64, limit, offset int) (*ClassReviewsResponse, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	reviews, err := s.reviews.ListByClass(ctx, classID, limit, offset)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviews.StatsByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return &ClassReviewsResponse{Reviews: reviews, Statistics: stats}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
