package booking

import (
	"time"

	"getfit/internal/domain"
)

type CreateBookingRequest struct {
	ScheduleID int64  `json:"schedule_id" binding:"required,gt=0"`
	Notes      string `json:"notes"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type UpdateBookingRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// BookingDetails is the listing/detail shape: the booking plus the schedule
// and class it points at.
type BookingDetails struct {
	ID               int64      `json:"id"`
	Status           string     `json:"status"`
	BookingTime      time.Time  `json:"booking_time"`
	CancellationTime *time.Time `json:"cancellation_time,omitempty"`
	IsWaitlisted     bool       `json:"is_waitlisted"`
	WaitlistPosition *int       `json:"waitlist_position,omitempty"`
	Notes            string     `json:"notes,omitempty"`

	ScheduleID     int64     `json:"schedule_id"`
	ClassID        int64     `json:"class_id"`
	ClassName      string    `json:"class_name"`
	InstructorName string    `json:"instructor_name"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	ScheduleStatus string    `json:"schedule_status"`
	AvailableSlots int       `json:"available_slots"`
}

func toBookingDetails(b *domain.Booking) BookingDetails {
	d := BookingDetails{
		ID:               b.ID,
		Status:           string(b.Status),
		BookingTime:      b.BookingTime,
		CancellationTime: b.CancellationTime,
		IsWaitlisted:     b.IsWaitlisted,
		WaitlistPosition: b.WaitlistPosition,
		Notes:            b.Notes,
		ScheduleID:       b.ScheduleID,
	}
	if s := b.Schedule; s != nil {
		d.ClassID = s.ClassID
		d.ClassName = s.ClassName
		d.InstructorName = s.InstructorName
		d.StartTime = s.StartTime
		d.EndTime = s.EndTime
		d.ScheduleStatus = string(s.Status)
		d.AvailableSlots = s.AvailableSlots()
	}
	return d
}
