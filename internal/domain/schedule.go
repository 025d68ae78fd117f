package domain

import "time"

type ScheduleStatus string

const (
	ScheduleActive    ScheduleStatus = "active"
	ScheduleFull      ScheduleStatus = "full"
	ScheduleCancelled ScheduleStatus = "cancelled"
	ScheduleCompleted ScheduleStatus = "completed"
)

type RecurringType string

const (
	RecurringNone    RecurringType = "none"
	RecurringDaily   RecurringType = "daily"
	RecurringWeekly  RecurringType = "weekly"
	RecurringMonthly RecurringType = "monthly"
)

type ClassSchedule struct {
	ID                 int64          `json:"id"`
	ClassID            int64          `json:"class_id" validate:"required,gt=0"`
	InstructorID       int64          `json:"instructor_id"`
	StartTime          time.Time      `json:"start_time" validate:"required"`
	EndTime            time.Time      `json:"end_time"`
	MaxCapacity        int            `json:"max_capacity" validate:"required,gte=1,lte=1000"`
	BookedSlots        int            `json:"booked_slots"`
	WaitlistEnabled    bool           `json:"waitlist_enabled"`
	RecurringType      RecurringType  `json:"recurring_type"`
	RecurringEndDate   *time.Time     `json:"recurring_end_date,omitempty"`
	ParentScheduleID   *int64         `json:"parent_schedule_id,omitempty"`
	Status             ScheduleStatus `json:"status"`
	Notes              string         `json:"notes,omitempty"`
	CancellationReason string         `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	ClassName      string `json:"class_name,omitempty"`
	InstructorName string `json:"instructor_name,omitempty"`
}

// DeriveScheduleStatus recomputes a schedule status from its own fields.
// Cancelled is terminal and never recomputed. A session whose start time has
// passed while it was open becomes completed; otherwise the status tracks
// capacity: full when booked_slots >= max_capacity, active below that.
// Callers must apply this on every write path that touches booked_slots or
// start_time, not from a periodic sweep.
func DeriveScheduleStatus(current ScheduleStatus, bookedSlots, maxCapacity int, startTime, now time.Time) ScheduleStatus {
	if current == ScheduleCancelled || current == ScheduleCompleted {
		return current
	}
	if startTime.Before(now) {
		return ScheduleCompleted
	}
	if bookedSlots >= maxCapacity {
		return ScheduleFull
	}
	return ScheduleActive
}

// AvailableSlots never reports negative capacity even if booked_slots is
// transiently above max_capacity during a cancellation race.
func (s *ClassSchedule) AvailableSlots() int {
	if s.BookedSlots >= s.MaxCapacity {
		return 0
	}
	return s.MaxCapacity - s.BookedSlots
}

func (s *ClassSchedule) IsFull() bool {
	return s.BookedSlots >= s.MaxCapacity
}

func (s *ClassSchedule) IsUpcoming(now time.Time) bool {
	return s.StartTime.After(now)
}

func (s *ClassSchedule) DurationMinutes() int {
	return int(s.EndTime.Sub(s.StartTime).Minutes())
}
