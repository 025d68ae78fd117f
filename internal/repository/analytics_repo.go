package repository

import (
	"context"
	"time"

	"getfit/internal/domain"

	"gorm.io/gorm"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

type PlatformTotals struct {
	Users      int64 `json:"users"`
	Classes    int64 `json:"classes"`
	Schedules  int64 `json:"schedules"`
	Bookings   int64 `json:"bookings"`
	Reviews    int64 `json:"reviews"`
	Confirmed  int64 `json:"confirmed_bookings"`
	Waitlisted int64 `json:"waitlisted_bookings"`
	Cancelled  int64 `json:"cancelled_bookings"`
	Completed  int64 `json:"completed_bookings"`
}

func (r *AnalyticsRepository) Totals(ctx context.Context) (*PlatformTotals, error) {
	var t PlatformTotals
	db := r.db.WithContext(ctx)

	counts := []struct {
		dst   *int64
		model any
	}{
		{&t.Users, &userModel{}},
		{&t.Classes, &ClassModel{}},
		{&t.Schedules, &ScheduleModel{}},
		{&t.Bookings, &BookingModel{}},
		{&t.Reviews, &ReviewModel{}},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	type statusRow struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}
	var byStatus []statusRow
	err := db.Model(&BookingModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		switch domain.BookingStatus(row.Status) {
		case domain.BookingBooked:
			t.Confirmed = row.Count
		case domain.BookingWaitlisted:
			t.Waitlisted = row.Count
		case domain.BookingCancelled:
			t.Cancelled = row.Count
		case domain.BookingCompleted:
			t.Completed = row.Count
		}
	}
	return &t, nil
}

type CategoryBookings struct {
	CategoryID   int64  `gorm:"column:category_id" json:"category_id"`
	CategoryName string `gorm:"column:category_name" json:"category_name"`
	Bookings     int64  `gorm:"column:bookings" json:"bookings"`
}

func (r *AnalyticsRepository) BookingsByCategory(ctx context.Context) ([]CategoryBookings, error) {
	var rows []CategoryBookings
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select("class_categories.id AS category_id, class_categories.name AS category_name, COUNT(bookings.id) AS bookings").
		Joins("JOIN class_schedules ON class_schedules.id = bookings.class_schedule_id").
		Joins("JOIN classes ON classes.id = class_schedules.class_id").
		Joins("JOIN class_categories ON class_categories.id = classes.category_id").
		Where("bookings.status <> ?", string(domain.BookingCancelled)).
		Group("class_categories.id, class_categories.name").
		Order("bookings DESC").
		Scan(&rows).Error
	return rows, err
}

type ClassPopularity struct {
	ClassID   int64    `gorm:"column:class_id" json:"class_id"`
	ClassName string   `gorm:"column:class_name" json:"class_name"`
	Bookings  int64    `gorm:"column:bookings" json:"bookings"`
	AvgRating *float64 `gorm:"column:avg_rating" json:"average_rating"`
}

func (r *AnalyticsRepository) TopClasses(ctx context.Context, limit int) ([]ClassPopularity, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var rows []ClassPopularity
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select("classes.id AS class_id, classes.name AS class_name, COUNT(bookings.id) AS bookings, "+
			"(SELECT AVG(rating) FROM class_reviews WHERE class_reviews.class_id = classes.id) AS avg_rating").
		Joins("JOIN class_schedules ON class_schedules.id = bookings.class_schedule_id").
		Joins("JOIN classes ON classes.id = class_schedules.class_id").
		Where("bookings.status <> ?", string(domain.BookingCancelled)).
		Group("classes.id, classes.name").
		Order("bookings DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

type DailyBookings struct {
	Day   string `gorm:"column:day" json:"day"`
	Count int64  `gorm:"column:count" json:"count"`
}

// BookingTrend buckets bookings per calendar day over the trailing window.
// DATE() is understood by both postgres and sqlite.
func (r *AnalyticsRepository) BookingTrend(ctx context.Context, days int) ([]DailyBookings, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var rows []DailyBookings
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("DATE(booking_time) AS day, COUNT(*) AS count").
		Where("booking_time >= ?", since).
		Group("DATE(booking_time)").
		Order("day").
		Scan(&rows).Error
	return rows, err
}

type InstructorPerformance struct {
	TotalClasses     int64    `json:"total_classes"`
	TotalSchedules   int64    `json:"total_schedules"`
	UpcomingSessions int64    `json:"upcoming_sessions"`
	TotalBookings    int64    `json:"total_bookings"`
	TotalAttendees   int64    `json:"total_attendees"`
	AverageRating    *float64 `json:"average_rating"`
	TotalReviews     int64    `json:"total_reviews"`
}

func (r *AnalyticsRepository) InstructorPerformance(ctx context.Context, instructorID int64, now time.Time) (*InstructorPerformance, error) {
	var p InstructorPerformance
	db := r.db.WithContext(ctx)

	if err := db.Model(&ClassModel{}).
		Where("instructor_id = ?", instructorID).
		Count(&p.TotalClasses).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&ScheduleModel{}).
		Where("instructor_id = ?", instructorID).
		Count(&p.TotalSchedules).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&ScheduleModel{}).
		Where("instructor_id = ? AND start_time >= ? AND status IN ?", instructorID, now, []string{
			string(domain.ScheduleActive), string(domain.ScheduleFull),
		}).
		Count(&p.UpcomingSessions).Error; err != nil {
		return nil, err
	}

	if err := db.Table("bookings").
		Joins("JOIN class_schedules ON class_schedules.id = bookings.class_schedule_id").
		Where("class_schedules.instructor_id = ? AND bookings.status <> ?",
			instructorID, string(domain.BookingCancelled)).
		Count(&p.TotalBookings).Error; err != nil {
		return nil, err
	}
	if err := db.Table("bookings").
		Joins("JOIN class_schedules ON class_schedules.id = bookings.class_schedule_id").
		Where("class_schedules.instructor_id = ? AND bookings.status = ?",
			instructorID, string(domain.BookingCompleted)).
		Count(&p.TotalAttendees).Error; err != nil {
		return nil, err
	}

	type ratingRow struct {
		Total int64    `gorm:"column:total"`
		Avg   *float64 `gorm:"column:avg_rating"`
	}
	var rating ratingRow
	err := db.Table("class_reviews").
		Select("COUNT(*) AS total, AVG(class_reviews.rating) AS avg_rating").
		Joins("JOIN classes ON classes.id = class_reviews.class_id").
		Where("classes.instructor_id = ?", instructorID).
		Scan(&rating).Error
	if err != nil {
		return nil, err
	}
	p.TotalReviews = rating.Total
	p.AverageRating = rating.Avg

	return &p, nil
}
