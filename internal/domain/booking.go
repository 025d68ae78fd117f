package domain

import "time"

type BookingStatus string

const (
	BookingBooked     BookingStatus = "booked"
	BookingWaitlisted BookingStatus = "waitlisted"
	BookingCancelled  BookingStatus = "cancelled"
	BookingCompleted  BookingStatus = "completed"
)

type Booking struct {
	ID               int64         `json:"id"`
	UserID           int64         `json:"user_id"`
	ScheduleID       int64         `json:"schedule_id" validate:"required,gt=0"`
	Status           BookingStatus `json:"status"`
	BookingTime      time.Time     `json:"booking_time"`
	CancellationTime *time.Time    `json:"cancellation_time,omitempty"`
	IsWaitlisted     bool          `json:"is_waitlisted"`
	WaitlistPosition *int          `json:"waitlist_position,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	Schedule *ClassSchedule `json:"schedule,omitempty"`
}

// IsActive reports whether the booking still occupies a confirmed seat.
func (b *Booking) IsActive() bool {
	return b.Status == BookingBooked
}

// IsMutable reports whether notes may still be edited or the booking cancelled.
func (b *Booking) IsMutable() bool {
	return b.Status != BookingCancelled && b.Status != BookingCompleted
}
