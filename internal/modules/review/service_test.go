package review

import (
	"context"
	"testing"
	"time"

	"getfit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, rv *domain.ClassReview) error {
	args := m.Called(ctx, rv)
	return args.Error(0)
}

func (m *mockReviewRepo) ExistsForUserSchedule(ctx context.Context, userID, scheduleID int64) (bool, error) {
	args := m.Called(ctx, userID, scheduleID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) ListByClass(ctx context.Context, classID int64, limit, offset int) ([]domain.ClassReview, error) {
	args := m.Called(ctx, classID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClassReview), args.Error(1)
}

func (m *mockReviewRepo) ListByUser(ctx context.Context, userID int64) ([]domain.ClassReview, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClassReview), args.Error(1)
}

func (m *mockReviewRepo) StatsByClass(ctx context.Context, classID int64) (*domain.ReviewStats, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewStats), args.Error(1)
}

type mockEligibilityReader struct {
	mock.Mock
}

func (m *mockEligibilityReader) HasCompletedBooking(ctx context.Context, userID, scheduleID int64) (bool, error) {
	args := m.Called(ctx, userID, scheduleID)
	return args.Bool(0), args.Error(1)
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

type mockClassReader struct {
	mock.Mock
}

func (m *mockClassReader) GetByID(ctx context.Context, id int64) (*domain.Class, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Class), args.Error(1)
}

func completedSchedule(id, classID int64) *domain.ClassSchedule {
	return &domain.ClassSchedule{
		ID:        id,
		ClassID:   classID,
		StartTime: time.Now().Add(-48 * time.Hour),
		EndTime:   time.Now().Add(-47 * time.Hour),
		Status:    domain.ScheduleCompleted,
	}
}

func newTestService(reviews *mockReviewRepo, bookings *mockEligibilityReader, schedules *mockScheduleReader, classes *mockClassReader) *Service {
	return NewService(reviews, bookings, schedules, classes)
}

func TestCreateReview_Success_DenormalizesClass(t *testing.T) {
	reviews := new(mockReviewRepo)
	bookings := new(mockEligibilityReader)
	schedules := new(mockScheduleReader)
	svc := newTestService(reviews, bookings, schedules, new(mockClassReader))

	schedules.On("GetByID", mock.Anything, int64(10)).Return(completedSchedule(10, 7), nil)
	bookings.On("HasCompletedBooking", mock.Anything, int64(1), int64(10)).Return(true, nil)
	reviews.On("ExistsForUserSchedule", mock.Anything, int64(1), int64(10)).Return(false, nil)
	reviews.On("Create", mock.Anything, mock.MatchedBy(func(rv *domain.ClassReview) bool {
		return rv.ClassID == 7 && rv.Rating == 5
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.ClassReview).ID = 55
	}).Return(nil)

	rv, err := svc.CreateReview(context.Background(), 1, CreateReviewRequest{
		ScheduleID: 10,
		Rating:     5,
		Review:     "great session",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), rv.ID)
	assert.Equal(t, int64(7), rv.ClassID)
}

func TestCreateReview_NoCompletedBooking(t *testing.T) {
	reviews := new(mockReviewRepo)
	bookings := new(mockEligibilityReader)
	schedules := new(mockScheduleReader)
	svc := newTestService(reviews, bookings, schedules, new(mockClassReader))

	schedules.On("GetByID", mock.Anything, int64(10)).Return(completedSchedule(10, 7), nil)
	bookings.On("HasCompletedBooking", mock.Anything, int64(1), int64(10)).Return(false, nil)

	_, err := svc.CreateReview(context.Background(), 1, CreateReviewRequest{ScheduleID: 10, Rating: 4})
	assert.ErrorIs(t, err, ErrNotEligible)
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_DuplicateRejected(t *testing.T) {
	reviews := new(mockReviewRepo)
	bookings := new(mockEligibilityReader)
	schedules := new(mockScheduleReader)
	svc := newTestService(reviews, bookings, schedules, new(mockClassReader))

	schedules.On("GetByID", mock.Anything, int64(10)).Return(completedSchedule(10, 7), nil)
	bookings.On("HasCompletedBooking", mock.Anything, int64(1), int64(10)).Return(true, nil)
	reviews.On("ExistsForUserSchedule", mock.Anything, int64(1), int64(10)).Return(true, nil)

	_, err := svc.CreateReview(context.Background(), 1, CreateReviewRequest{ScheduleID: 10, Rating: 4})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestCreateReview_ScheduleNotFound(t *testing.T) {
	reviews := new(mockReviewRepo)
	bookings := new(mockEligibilityReader)
	schedules := new(mockScheduleReader)
	svc := newTestService(reviews, bookings, schedules, new(mockClassReader))

	schedules.On("GetByID", mock.Anything, int64(10)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.CreateReview(context.Background(), 1, CreateReviewRequest{ScheduleID: 10, Rating: 4})
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestCreateReview_RaceSurfacesAsDuplicate(t *testing.T) {
	reviews := new(mockReviewRepo)
	bookings := new(mockEligibilityReader)
	schedules := new(mockScheduleReader)
	svc := newTestService(reviews, bookings, schedules, new(mockClassReader))

	schedules.On("GetByID", mock.Anything, int64(10)).Return(completedSchedule(10, 7), nil)
	bookings.On("HasCompletedBooking", mock.Anything, int64(1), int64(10)).Return(true, nil)
	reviews.On("ExistsForUserSchedule", mock.Anything, int64(1), int64(10)).Return(false, nil)
	// The DB unique index fires instead of the pre-check.
	reviews.On("Create", mock.Anything, mock.Anything).Return(uniqueViolationErr{})

	_, err := svc.CreateReview(context.Background(), 1, CreateReviewRequest{ScheduleID: 10, Rating: 4})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

type uniqueViolationErr struct{}

func (uniqueViolationErr) Error() string {
	return "UNIQUE constraint failed: class_reviews.user_id, class_reviews.class_schedule_id"
}

func TestGetClassReviews_UnknownClass(t *testing.T) {
	reviews := new(mockReviewRepo)
	classes := new(mockClassReader)
	svc := newTestService(reviews, new(mockEligibilityReader), new(mockScheduleReader), classes)

	classes.On("GetByID", mock.Anything, int64(7)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetClassReviews(context.Background(), 7, 20, 0)
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestGetClassReviews_WithStats(t *testing.T) {
	reviews := new(mockReviewRepo)
	classes := new(mockClassReader)
	svc := newTestService(reviews, new(mockEligibilityReader), new(mockScheduleReader), classes)

	classes.On("GetByID", mock.Anything, int64(7)).Return(&domain.Class{ID: 7}, nil)
	reviews.On("ListByClass", mock.Anything, int64(7), 20, 0).Return([]domain.ClassReview{
		{ID: 1, ClassID: 7, Rating: 5},
		{ID: 2, ClassID: 7, Rating: 3},
	}, nil)
	avg := 4.0
	reviews.On("StatsByClass", mock.Anything, int64(7)).Return(&domain.ReviewStats{
		TotalReviews:  2,
		AverageRating: &avg,
		Distribution:  map[string]int64{"1": 0, "2": 0, "3": 1, "4": 0, "5": 1},
	}, nil)

	result, err := svc.GetClassReviews(context.Background(), 7, 20, 0)
	require.NoError(t, err)
	assert.Len(t, result.Reviews, 2)
	assert.Equal(t, int64(2), result.Statistics.TotalReviews)
	require.NotNil(t, result.Statistics.AverageRating)
	assert.InDelta(t, 4.0, *result.Statistics.AverageRating, 0.001)
}
