package catalog

import (
	"time"

	"getfit/internal/domain"
	"getfit/internal/repository"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

type CreateClassRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	CategoryID      int64    `json:"category_id" binding:"required,gt=0"`
	InstructorID    int64    `json:"instructor_id" binding:"required,gt=0"`
	Duration        int      `json:"duration" binding:"required"`
	DifficultyLevel string   `json:"difficulty_level"`
	MaxCapacity     int      `json:"max_capacity" binding:"required"`
	LocationType    string   `json:"location_type"`
	LocationName    string   `json:"location_name"`
	LocationAddress string   `json:"location_address"`
	Requirements    string   `json:"requirements"`
	WhatToExpect    string   `json:"what_to_expect"`
	Benefits        string   `json:"benefits"`
	Price           *float64 `json:"price"`
	Currency        string   `json:"currency"`
	IsFeatured      bool     `json:"is_featured"`
	Image           string   `json:"image"`
	VideoURL        string   `json:"video_url"`
}

type UpdateClassRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	CategoryID      *int64   `json:"category_id"`
	Duration        *int     `json:"duration"`
	DifficultyLevel *string  `json:"difficulty_level"`
	MaxCapacity     *int     `json:"max_capacity"`
	LocationType    *string  `json:"location_type"`
	LocationName    *string  `json:"location_name"`
	LocationAddress *string  `json:"location_address"`
	Requirements    *string  `json:"requirements"`
	WhatToExpect    *string  `json:"what_to_expect"`
	Benefits        *string  `json:"benefits"`
	Price           *float64 `json:"price"`
	Currency        *string  `json:"currency"`
	IsActive        *bool    `json:"is_active"`
	IsFeatured      *bool    `json:"is_featured"`
	Image           *string  `json:"image"`
	VideoURL        *string  `json:"video_url"`
}

type CreateScheduleRequest struct {
	ClassID          int64      `json:"class_id" binding:"required,gt=0"`
	StartTime        time.Time  `json:"start_time" binding:"required"`
	EndTime          *time.Time `json:"end_time"`
	MaxCapacity      *int       `json:"max_capacity"`
	WaitlistEnabled  *bool      `json:"waitlist_enabled"`
	RecurringType    string     `json:"recurring_type"`
	RecurringEndDate *time.Time `json:"recurring_end_date"`
	Notes            string     `json:"notes"`
}

type CancelScheduleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ScheduleSnapshot is the lightweight capacity view polled by clients.
type ScheduleSnapshot struct {
	ScheduleID      int64     `json:"schedule_id"`
	ClassID         int64     `json:"class_id"`
	ClassName       string    `json:"class_name"`
	InstructorName  string    `json:"instructor_name"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	MaxCapacity     int       `json:"max_capacity"`
	BookedSlots     int       `json:"booked_slots"`
	AvailableSlots  int       `json:"available_slots"`
	IsFull          bool      `json:"is_full"`
	WaitlistEnabled bool      `json:"waitlist_enabled"`
	Status          string    `json:"status"`
}

func toScheduleSnapshot(s *domain.ClassSchedule) ScheduleSnapshot {
	return ScheduleSnapshot{
		ScheduleID:      s.ID,
		ClassID:         s.ClassID,
		ClassName:       s.ClassName,
		InstructorName:  s.InstructorName,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		MaxCapacity:     s.MaxCapacity,
		BookedSlots:     s.BookedSlots,
		AvailableSlots:  s.AvailableSlots(),
		IsFull:          s.IsFull(),
		WaitlistEnabled: s.WaitlistEnabled,
		Status:          string(s.Status),
	}
}

type CalendarDay struct {
	Date      string                 `json:"date"`
	Schedules []domain.ClassSchedule `json:"schedules"`
}

type InstructorDashboard struct {
	Classes          []domain.Class                    `json:"classes"`
	UpcomingSessions []domain.ClassSchedule            `json:"upcoming_sessions"`
	Performance      *repository.InstructorPerformance `json:"performance"`
}

type AdminAnalytics struct {
	Totals             *repository.PlatformTotals    `json:"totals"`
	BookingsByCategory []repository.CategoryBookings `json:"bookings_by_category"`
	TopClasses         []repository.ClassPopularity  `json:"top_classes"`
	Trend              []repository.DailyBookings    `json:"booking_trend"`
}
