package live

import (
	"context"
	"log"
	"time"

	"getfit/internal/domain"
)

// ScheduleReader resolves the current capacity state for broadcasts.
type ScheduleReader interface {
	GetByID(ctx context.Context, id int64) (*domain.ClassSchedule, error)
}

// AvailabilityUpdate is the wire shape pushed to subscribers.
type AvailabilityUpdate struct {
	ScheduleID     int64  `json:"schedule_id"`
	BookedSlots    int    `json:"booked_slots"`
	MaxCapacity    int    `json:"max_capacity"`
	AvailableSlots int    `json:"available_slots"`
	Status         string `json:"status"`
}

type Service struct {
	hub       *Hub
	schedules ScheduleReader
}

func NewService(hub *Hub, schedules ScheduleReader) *Service {
	return &Service{hub: hub, schedules: schedules}
}

// ScheduleChanged is called by the booking and catalog services after any
// capacity mutation. The broadcast runs detached so callers never block on
// slow subscribers.
func (s *Service) ScheduleChanged(scheduleID int64) {
	if s.hub.SubscriberCount(scheduleID) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		schedule, err := s.schedules.GetByID(ctx, scheduleID)
		if err != nil {
			log.Printf("live: failed to load schedule %d for broadcast: %v", scheduleID, err)
			return
		}

		s.hub.Broadcast(scheduleID, AvailabilityUpdate{
			ScheduleID:     schedule.ID,
			BookedSlots:    schedule.BookedSlots,
			MaxCapacity:    schedule.MaxCapacity,
			AvailableSlots: schedule.AvailableSlots(),
			Status:         string(schedule.Status),
		})
	}()
}
