package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"getfit/internal/domain"
	"getfit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) CreateConfirmed(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBookingRepo) CreateWaitlisted(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBookingRepo) Cancel(ctx context.Context, bookingID int64, reason string, now time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateNotes(ctx context.Context, bookingID int64, notes string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ExistsForUserSchedule(ctx context.Context, userID, scheduleID int64) (bool, error) {
	args := m.Called(ctx, userID, scheduleID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) ListByUser(ctx context.Context, userID int64, f repository.BookingFilters) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetDetailsByID(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetDetailsByUserAndSchedule(ctx context.Context, userID, scheduleID int64) (*domain.Booking, error) {
	args := m.Called(ctx, userID, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type mockScheduleReader struct {
	mock.Mock
}

func (m *mockScheduleReader) GetByID(ctx context.Context, id int64) (*domain.ClassSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClassSchedule), args.Error(1)
}

type recordingNotifier struct {
	changed []int64
}

func (n *recordingNotifier) ScheduleChanged(scheduleID int64) {
	n.changed = append(n.changed, scheduleID)
}

func upcomingSchedule(id int64, booked, capacity int) *domain.ClassSchedule {
	status := domain.ScheduleActive
	if booked >= capacity {
		status = domain.ScheduleFull
	}
	return &domain.ClassSchedule{
		ID:              id,
		ClassID:         1,
		InstructorID:    2,
		StartTime:       time.Now().Add(48 * time.Hour),
		EndTime:         time.Now().Add(49 * time.Hour),
		MaxCapacity:     capacity,
		BookedSlots:     booked,
		WaitlistEnabled: true,
		Status:          status,
	}
}

func TestCreateBooking_Confirmed(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	notifier := &recordingNotifier{}
	svc := NewService(repo, schedules, notifier, 24*time.Hour)

	schedules.On("GetByID", mock.Anything, int64(10)).Return(upcomingSchedule(10, 0, 5), nil)
	repo.On("ExistsForUserSchedule", mock.Anything, int64(1), int64(10)).Return(false, nil)
	repo.On("CreateConfirmed", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.UserID == 1 && b.ScheduleID == 10
	})).Run(func(args mock.Arguments) {
		b := args.Get(1).(*domain.Booking)
		b.ID = 100
		b.Status = domain.BookingBooked
	}).Return(nil)

	b, err := svc.CreateBooking(context.Background(), 1, CreateBookingRequest{ScheduleID: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingBooked, b.Status)
	assert.False(t, b.IsWaitlisted)
	assert.Equal(t, []int64{10}, notifier.changed)
	repo.AssertNotCalled(t, "CreateWaitlisted", mock.Anything, mock.Anything)
}

func TestCreateBooking_ScheduleNotFound(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	schedules.On("GetByID", mock.Anything, int64(10)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.CreateBooking(context.Background(), 1, CreateBookingRequest{ScheduleID: 10})
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestCreateBooking_CancelledScheduleRejected(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	s := upcomingSchedule(10, 0, 5)
	s.Status = domain.ScheduleCancelled
	schedules.On("GetByID", mock.Anything, int64(10)).Return(s, nil)

	_, err := svc.CreateBooking(context.Background(), 1, CreateBookingRequest{ScheduleID: 10})
	assert.ErrorIs(t, err, ErrScheduleNotActive)
}

func TestCreateBooking_PastScheduleRejected(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	s := upcomingSchedule(10, 0, 5)
	s.StartTime = time.Now().Add(-time.Hour)
	schedules.On("GetByID", mock.Anything, int64(10)).Return(s, nil)

	_, err := svc.CreateBooking(context.Background(), 1, CreateBookingRequest{ScheduleID: 10})
	assert.ErrorIs(t, err, ErrScheduleInPast)
	repo.AssertNotCalled(t, "CreateConfirmed", mock.Anything, mock.Anything)
}

func TestCreateBooking_DuplicateRejected(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	schedules.On("GetByID", mock.Anything, int64(10)).Return(upcomingSchedule(10, 0, 5), nil)
	repo.On("ExistsForUserSchedule", mock.Anything, int64(1), int64(10)).Return(true, nil)

	_, err := svc.CreateBooking(context.Background(), 1, CreateBookingRequest{ScheduleID: 10})
	assert.ErrorIs(t, err, ErrAlreadyBooked)
	repo.AssertNotCalled(t, "CreateConfirmed", mock.Anything, mock.Anything)
}

func TestCreateBooking_FullGoesToWaitlist(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	schedules.On("GetByID", mock.Anything, int64(10)).Return(upcomingSchedule(10, 1, 1), nil)
	repo.On("ExistsForUserSchedule", mock.Anything, int64(3), int64(10)).Return(false, nil)
	repo.On("CreateConfirmed", mock.Anything, mock.Anything).Return(repository.ErrNoSeatAvailable)
	repo.On("CreateWaitlisted", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		b := args.Get(1).(*domain.Booking)
		b.ID = 101
		b.Status = domain.BookingWaitlisted
		b.IsWaitlisted = true
		pos := 1
		b.WaitlistPosition = &pos
	}).Return(nil)

	b, err := svc.CreateBooking(context.Background(), 3, CreateBookingRequest{ScheduleID: 10})
	require.NoError(t, err)
	assert.True(t, b.IsWaitlisted)
	require.NotNil(t, b.WaitlistPosition)
	assert.Equal(t, 1, *b.WaitlistPosition)
}

func TestCreateBooking_FullWaitlistDisabledRejected(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	s := upcomingSchedule(10, 1, 1)
	s.WaitlistEnabled = false
	schedules.On("GetByID", mock.Anything, int64(10)).Return(s, nil)
	repo.On("ExistsForUserSchedule", mock.Anything, int64(3), int64(10)).Return(false, nil)
	repo.On("CreateConfirmed", mock.Anything, mock.Anything).Return(repository.ErrNoSeatAvailable)

	_, err := svc.CreateBooking(context.Background(), 3, CreateBookingRequest{ScheduleID: 10})
	assert.ErrorIs(t, err, ErrWaitlistDisabled)
	repo.AssertNotCalled(t, "CreateWaitlisted", mock.Anything, mock.Anything)
}

func TestCreateBooking_WaitlistRankRaceRetriesOnce(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	schedules.On("GetByID", mock.Anything, int64(10)).Return(upcomingSchedule(10, 2, 2), nil)
	repo.On("ExistsForUserSchedule", mock.Anything, int64(3), int64(10)).Return(false, nil)
	repo.On("CreateConfirmed", mock.Anything, mock.Anything).Return(repository.ErrNoSeatAvailable)

	rankConflict := errors.New("UNIQUE constraint failed: bookings.class_schedule_id, bookings.waitlist_position")
	repo.On("CreateWaitlisted", mock.Anything, mock.Anything).Return(rankConflict).Once()
	repo.On("CreateWaitlisted", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		b := args.Get(1).(*domain.Booking)
		b.Status = domain.BookingWaitlisted
		b.IsWaitlisted = true
		pos := 2
		b.WaitlistPosition = &pos
	}).Return(nil).Once()

	b, err := svc.CreateBooking(context.Background(), 3, CreateBookingRequest{ScheduleID: 10})
	require.NoError(t, err)
	require.NotNil(t, b.WaitlistPosition)
	assert.Equal(t, 2, *b.WaitlistPosition)
	repo.AssertNumberOfCalls(t, "CreateWaitlisted", 2)
}

func TestCreateBooking_WaitlistRankRaceFailsAfterRetry(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	schedules.On("GetByID", mock.Anything, int64(10)).Return(upcomingSchedule(10, 2, 2), nil)
	repo.On("ExistsForUserSchedule", mock.Anything, int64(3), int64(10)).Return(false, nil)
	repo.On("CreateConfirmed", mock.Anything, mock.Anything).Return(repository.ErrNoSeatAvailable)

	rankConflict := errors.New("UNIQUE constraint failed: bookings.class_schedule_id, bookings.waitlist_position")
	repo.On("CreateWaitlisted", mock.Anything, mock.Anything).Return(rankConflict)

	_, err := svc.CreateBooking(context.Background(), 3, CreateBookingRequest{ScheduleID: 10})
	assert.ErrorIs(t, err, ErrWaitlistConflict)
	repo.AssertNumberOfCalls(t, "CreateWaitlisted", 2)
}

func TestCancelBooking_Success(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	notifier := &recordingNotifier{}
	svc := NewService(repo, schedules, notifier, 24*time.Hour)

	repo.On("GetByID", mock.Anything, int64(100)).Return(&domain.Booking{
		ID:         100,
		UserID:     1,
		ScheduleID: 10,
		Status:     domain.BookingBooked,
	}, nil)
	schedules.On("GetByID", mock.Anything, int64(10)).Return(upcomingSchedule(10, 1, 5), nil)
	repo.On("Cancel", mock.Anything, int64(100), "conflict", mock.Anything).Return(&domain.Booking{
		ID:     100,
		Status: domain.BookingCancelled,
	}, nil)

	b, err := svc.CancelBooking(context.Background(), 1, 100, CancelBookingRequest{Reason: "conflict"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)
	assert.Equal(t, []int64{10}, notifier.changed)
}

func TestCancelBooking_WaitlistedDoesNotBroadcast(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	notifier := &recordingNotifier{}
	svc := NewService(repo, schedules, notifier, 24*time.Hour)

	pos := 1
	repo.On("GetByID", mock.Anything, int64(100)).Return(&domain.Booking{
		ID:               100,
		UserID:           1,
		ScheduleID:       10,
		Status:           domain.BookingWaitlisted,
		IsWaitlisted:     true,
		WaitlistPosition: &pos,
	}, nil)
	schedules.On("GetByID", mock.Anything, int64(10)).Return(upcomingSchedule(10, 5, 5), nil)
	repo.On("Cancel", mock.Anything, int64(100), "", mock.Anything).Return(&domain.Booking{
		ID:     100,
		Status: domain.BookingCancelled,
	}, nil)

	_, err := svc.CancelBooking(context.Background(), 1, 100, CancelBookingRequest{})
	require.NoError(t, err)
	assert.Empty(t, notifier.changed)
}

func TestCancelBooking_WindowBoundary(t *testing.T) {
	cases := []struct {
		name        string
		untilStart  time.Duration
		expectError bool
	}{
		{"just inside the window", 23*time.Hour + 59*time.Minute, true},
		{"just outside the window", 24*time.Hour + time.Minute, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockBookingRepo)
			schedules := new(mockScheduleReader)
			svc := NewService(repo, schedules, nil, 24*time.Hour)

			repo.On("GetByID", mock.Anything, int64(100)).Return(&domain.Booking{
				ID:         100,
				UserID:     1,
				ScheduleID: 10,
				Status:     domain.BookingBooked,
			}, nil)
			s := upcomingSchedule(10, 1, 5)
			s.StartTime = time.Now().Add(tc.untilStart)
			schedules.On("GetByID", mock.Anything, int64(10)).Return(s, nil)

			if !tc.expectError {
				repo.On("Cancel", mock.Anything, int64(100), "", mock.Anything).Return(&domain.Booking{
					ID:     100,
					Status: domain.BookingCancelled,
				}, nil)
			}

			_, err := svc.CancelBooking(context.Background(), 1, 100, CancelBookingRequest{})
			if tc.expectError {
				assert.ErrorIs(t, err, ErrCancellationWindow)
				repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancelBooking_ConcurrentCancelLosesCleanly(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	notifier := &recordingNotifier{}
	svc := NewService(repo, schedules, notifier, 24*time.Hour)

	// The pre-check still sees a confirmed booking, but the guarded update in
	// the repository loses to a cancel committed in between.
	repo.On("GetByID", mock.Anything, int64(100)).Return(&domain.Booking{
		ID:         100,
		UserID:     1,
		ScheduleID: 10,
		Status:     domain.BookingBooked,
	}, nil)
	schedules.On("GetByID", mock.Anything, int64(10)).Return(upcomingSchedule(10, 1, 5), nil)
	repo.On("Cancel", mock.Anything, int64(100), "", mock.Anything).
		Return(nil, repository.ErrBookingImmutable)

	_, err := svc.CancelBooking(context.Background(), 1, 100, CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Empty(t, notifier.changed)
}

func TestCancelBooking_OtherUsersBookingForbidden(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	repo.On("GetByID", mock.Anything, int64(100)).Return(&domain.Booking{
		ID:     100,
		UserID: 2,
		Status: domain.BookingBooked,
	}, nil)

	_, err := svc.CancelBooking(context.Background(), 1, 100, CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	repo.On("GetByID", mock.Anything, int64(100)).Return(&domain.Booking{
		ID:     100,
		UserID: 1,
		Status: domain.BookingCancelled,
	}, nil)

	_, err := svc.CancelBooking(context.Background(), 1, 100, CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestUpdateBooking_CompletedRejected(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	repo.On("GetByID", mock.Anything, int64(100)).Return(&domain.Booking{
		ID:     100,
		UserID: 1,
		Status: domain.BookingCompleted,
	}, nil)

	_, err := svc.UpdateBooking(context.Background(), 1, 100, UpdateBookingRequest{Notes: "bring a mat"})
	assert.ErrorIs(t, err, ErrNotCancellable)
	repo.AssertNotCalled(t, "UpdateNotes", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateBooking_Success(t *testing.T) {
	repo := new(mockBookingRepo)
	schedules := new(mockScheduleReader)
	svc := NewService(repo, schedules, nil, 24*time.Hour)

	repo.On("GetByID", mock.Anything, int64(100)).Return(&domain.Booking{
		ID:     100,
		UserID: 1,
		Status: domain.BookingBooked,
	}, nil)
	repo.On("UpdateNotes", mock.Anything, int64(100), "bring a mat").Return(&domain.Booking{
		ID:    100,
		Notes: "bring a mat",
	}, nil)

	b, err := svc.UpdateBooking(context.Background(), 1, 100, UpdateBookingRequest{Notes: "bring a mat"})
	require.NoError(t, err)
	assert.Equal(t, "bring a mat", b.Notes)
}
