package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveScheduleStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-1 * time.Hour)

	tests := []struct {
		name     string
		current  ScheduleStatus
		booked   int
		capacity int
		start    time.Time
		want     ScheduleStatus
	}{
		{"active with free slots", ScheduleActive, 3, 10, future, ScheduleActive},
		{"reaches capacity", ScheduleActive, 10, 10, future, ScheduleFull},
		{"over capacity stays full", ScheduleActive, 11, 10, future, ScheduleFull},
		{"full drops below capacity", ScheduleFull, 9, 10, future, ScheduleActive},
		{"active past start completes", ScheduleActive, 3, 10, past, ScheduleCompleted},
		{"full past start completes", ScheduleFull, 10, 10, past, ScheduleCompleted},
		{"cancelled is terminal", ScheduleCancelled, 0, 10, future, ScheduleCancelled},
		{"cancelled stays cancelled in the past", ScheduleCancelled, 0, 10, past, ScheduleCancelled},
		{"completed is terminal", ScheduleCompleted, 0, 10, future, ScheduleCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveScheduleStatus(tt.current, tt.booked, tt.capacity, tt.start, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveScheduleStatus_Idempotent(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(24 * time.Hour)

	first := DeriveScheduleStatus(ScheduleActive, 10, 10, start, now)
	second := DeriveScheduleStatus(first, 10, 10, start, now)
	assert.Equal(t, first, second)
}

func TestScheduleAvailableSlots(t *testing.T) {
	s := &ClassSchedule{MaxCapacity: 10, BookedSlots: 4}
	assert.Equal(t, 6, s.AvailableSlots())
	assert.False(t, s.IsFull())

	s.BookedSlots = 10
	assert.Equal(t, 0, s.AvailableSlots())
	assert.True(t, s.IsFull())

	// transient over-booking during a cancellation race must not go negative
	s.BookedSlots = 11
	assert.Equal(t, 0, s.AvailableSlots())
}

func TestUserDisplayName(t *testing.T) {
	u := &User{Email: "jane.doe@example.com"}
	assert.Equal(t, "jane.doe", u.DisplayName())

	u.FirstName = "Jane"
	u.LastName = "Doe"
	assert.Equal(t, "Jane Doe", u.DisplayName())

	u.LastName = ""
	assert.Equal(t, "Jane", u.DisplayName())
}
