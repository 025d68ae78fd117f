package review

import "errors"

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrClassNotFound    = errors.New("class not found")
	ErrNotEligible      = errors.New("no completed booking for this schedule")
	ErrAlreadyReviewed  = errors.New("schedule already reviewed")
)
