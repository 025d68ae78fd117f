package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"getfit/internal/domain"
	"getfit/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Service struct {
	bookings           BookingRepositoryInterface
	schedules          ScheduleReader
	notifier           AvailabilityNotifier
	cancellationWindow time.Duration
}

func NewService(
	bookings BookingRepositoryInterface,
	schedules ScheduleReader,
	notifier AvailabilityNotifier,
	cancellationWindow time.Duration,
) *Service {
	if cancellationWindow <= 0 {
		cancellationWindow = 24 * time.Hour
	}
	return &Service{
		bookings:           bookings,
		schedules:          schedules,
		notifier:           notifier,
		cancellationWindow: cancellationWindow,
	}
}

// CreateBooking runs the seat-vs-waitlist decision. Preconditions fail with
// distinct errors; the capacity race is settled inside the repository, so a
// lost race surfaces here as the waitlist path or a rejection, never as an
// over-booked schedule.
func (s *Service) CreateBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*domain.Booking, error) {
	schedule, err := s.schedules.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	now := time.Now()
	if schedule.Status == domain.ScheduleCancelled || schedule.Status == domain.ScheduleCompleted {
		return nil, ErrScheduleNotActive
	}
	if !schedule.StartTime.After(now) {
		return nil, ErrScheduleInPast
	}

	exists, err := s.bookings.ExistsForUserSchedule(ctx, userID, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyBooked
	}

	b := &domain.Booking{
		UserID:      userID,
		ScheduleID:  req.ScheduleID,
		BookingTime: now,
		Notes:       strings.TrimSpace(req.Notes),
	}

	err = s.bookings.CreateConfirmed(ctx, b)
	switch {
	case err == nil:
		s.notifyChange(req.ScheduleID)
		return b, nil
	case errors.Is(err, repository.ErrNoSeatAvailable):
		// fall through to the waitlist decision
	case isDuplicateBooking(err):
		return nil, ErrAlreadyBooked
	default:
		return nil, err
	}

	if !schedule.WaitlistEnabled {
		return nil, ErrWaitlistDisabled
	}

	if err := s.createWaitlistedWithRetry(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// createWaitlistedWithRetry retries exactly once when two requests race for
// the same waitlist rank; the unique (schedule, position) index rejects the
// loser and the recomputed subquery picks the next rank.
func (s *Service) createWaitlistedWithRetry(ctx context.Context, b *domain.Booking) error {
	err := s.bookings.CreateWaitlisted(ctx, b)
	if err == nil {
		return nil
	}
	if isDuplicateBooking(err) {
		return ErrAlreadyBooked
	}
	if !isWaitlistRankConflict(err) {
		return err
	}

	err = s.bookings.CreateWaitlisted(ctx, b)
	if err == nil {
		return nil
	}
	if isDuplicateBooking(err) {
		return ErrAlreadyBooked
	}
	if isWaitlistRankConflict(err) {
		return ErrWaitlistConflict
	}
	return err
}

// CancelBooking enforces ownership, mutability and the cancellation window.
func (s *Service) CancelBooking(ctx context.Context, userID, bookingID int64, req CancelBookingRequest) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if !b.IsMutable() {
		return nil, ErrNotCancellable
	}

	schedule, err := s.schedules.GetByID(ctx, b.ScheduleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.After(schedule.StartTime.Add(-s.cancellationWindow)) {
		return nil, ErrCancellationWindow
	}

	cancelled, err := s.bookings.Cancel(ctx, bookingID, strings.TrimSpace(req.Reason), now)
	if err != nil {
		if errors.Is(err, repository.ErrBookingImmutable) {
			// Lost a concurrent cancel; the pre-check above raced.
			return nil, ErrNotCancellable
		}
		return nil, err
	}
	if b.IsActive() {
		s.notifyChange(b.ScheduleID)
	}
	return cancelled, nil
}

func (s *Service) UpdateBooking(ctx context.Context, userID, bookingID int64, req UpdateBookingRequest) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if !b.IsMutable() {
		return nil, ErrNotCancellable
	}

	return s.bookings.UpdateNotes(ctx, bookingID, strings.TrimSpace(req.Notes))
}

func (s *Service) ListMyBookings(ctx context.Context, userID int64, f repository.BookingFilters) ([]BookingDetails, error) {
	rows, err := s.bookings.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	out := make([]BookingDetails, 0, len(rows))
	for i := range rows {
		out = append(out, toBookingDetails(&rows[i]))
	}
	return out, nil
}

func (s *Service) GetMyBooking(ctx context.Context, userID, bookingID int64) (*BookingDetails, error) {
	b, err := s.bookings.GetDetailsByID(ctx, userID, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d := toBookingDetails(b)
	return &d, nil
}

// GetScheduleBooking returns the requester's booking for a schedule, if any.
func (s *Service) GetScheduleBooking(ctx context.Context, userID, scheduleID int64) (*BookingDetails, error) {
	b, err := s.bookings.GetDetailsByUserAndSchedule(ctx, userID, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d := toBookingDetails(b)
	return &d, nil
}

func (s *Service) notifyChange(scheduleID int64) {
	if s.notifier != nil {
		s.notifier.ScheduleChanged(scheduleID)
	}
}

func isDuplicateBooking(err error) bool {
	if !isUniqueViolation(err) {
		return false
	}
	return !isWaitlistRankConflict(err)
}

func isWaitlistRankConflict(err error) bool {
	if !isUniqueViolation(err) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.Contains(pgErr.ConstraintName, "waitlist")
	}
	return strings.Contains(err.Error(), "waitlist_position")
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
