package booking

import (
	"context"
	"time"

	"getfit/internal/domain"
	"getfit/internal/repository"
)

// BookingRepositoryInterface — only the methods the booking service uses.
type BookingRepositoryInterface interface {
	CreateConfirmed(ctx context.Context, b *domain.Booking) error
	CreateWaitlisted(ctx context.Context, b *domain.Booking) error
	Cancel(ctx context.Context, bookingID int64, reason string, now time.Time) (*domain.Booking, error)
	UpdateNotes(ctx context.Context, bookingID int64, notes string) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ExistsForUserSchedule(ctx context.Context, userID, scheduleID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64, f repository.BookingFilters) ([]domain.Booking, error)
	GetDetailsByID(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	GetDetailsByUserAndSchedule(ctx context.Context, userID, scheduleID int64) (*domain.Booking, error)
}

// ScheduleReader resolves schedules for precondition checks.
type ScheduleReader interface {
	GetByID(ctx context.Context, id int64) (*domain.ClassSchedule, error)
}

// AvailabilityNotifier pushes capacity changes to live subscribers. Optional;
// a nil notifier disables broadcasting.
type AvailabilityNotifier interface {
	ScheduleChanged(scheduleID int64)
}
