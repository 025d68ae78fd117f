package booking

import "errors"

var (
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrScheduleNotActive  = errors.New("schedule is not open for booking")
	ErrScheduleInPast     = errors.New("schedule has already started")
	ErrAlreadyBooked      = errors.New("booking already exists for this schedule")
	ErrWaitlistDisabled   = errors.New("schedule is full and waitlist is disabled")
	ErrWaitlistConflict   = errors.New("waitlist position conflict")
	ErrNotFound           = errors.New("booking not found")
	ErrForbidden          = errors.New("booking belongs to another user")
	ErrNotCancellable     = errors.New("booking can no longer be changed")
	ErrCancellationWindow = errors.New("too close to start time to cancel")
)
