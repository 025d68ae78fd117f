package catalog

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrForbidden          = errors.New("resource belongs to another instructor")
	ErrNotInstructor      = errors.New("user does not hold the instructor role")
	ErrScheduleInPast     = errors.New("start time must be in the future")
	ErrScheduleNotEnded   = errors.New("schedule has not started yet")
	ErrScheduleNotMutable = errors.New("schedule is cancelled or completed")
)
