package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"getfit/internal/domain"
	"getfit/internal/pkg/validator"
	"getfit/internal/repository"

	"gorm.io/gorm"
)

// AvailabilityNotifier mirrors the booking module's notifier; schedule cancel
// and complete also change what clients see.
type AvailabilityNotifier interface {
	ScheduleChanged(scheduleID int64)
}

type Service struct {
	categories *repository.CategoryRepository
	classes    *repository.ClassRepository
	schedules  *repository.ScheduleRepository
	users      *repository.UserRepository
	analytics  *repository.AnalyticsRepository
	notifier   AvailabilityNotifier
}

func NewService(
	categories *repository.CategoryRepository,
	classes *repository.ClassRepository,
	schedules *repository.ScheduleRepository,
	users *repository.UserRepository,
	analytics *repository.AnalyticsRepository,
	notifier AvailabilityNotifier,
) *Service {
	return &Service{
		categories: categories,
		classes:    classes,
		schedules:  schedules,
		users:      users,
		analytics:  analytics,
		notifier:   notifier,
	}
}

// ---- public catalog ----

func (s *Service) ListCategories(ctx context.Context) ([]domain.ClassCategory, error) {
	return s.categories.ListActive(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.ClassCategory, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) ListClasses(ctx context.Context, f repository.ClassFilters) ([]domain.Class, int64, error) {
	return s.classes.List(ctx, f)
}

func (s *Service) GetClass(ctx context.Context, id int64) (*domain.Class, error) {
	c, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) ListSchedules(ctx context.Context, f repository.ScheduleFilters) ([]domain.ClassSchedule, error) {
	return s.schedules.List(ctx, f)
}

// Calendar groups upcoming schedules by calendar day within [from, to).
func (s *Service) Calendar(ctx context.Context, f repository.ScheduleFilters) ([]CalendarDay, error) {
	rows, err := s.schedules.List(ctx, f)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]domain.ClassSchedule)
	for _, row := range rows {
		day := row.StartTime.Format("2006-01-02")
		byDay[day] = append(byDay[day], row)
	}

	days := make([]CalendarDay, 0, len(byDay))
	for day, schedules := range byDay {
		days = append(days, CalendarDay{Date: day, Schedules: schedules})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func (s *Service) GetScheduleSnapshot(ctx context.Context, id int64) (*ScheduleSnapshot, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	snap := toScheduleSnapshot(schedule)
	return &snap, nil
}

// ---- instructor surface ----

func (s *Service) InstructorDashboard(ctx context.Context, instructorID int64) (*InstructorDashboard, error) {
	now := time.Now()

	classes, _, err := s.classes.List(ctx, repository.ClassFilters{
		InstructorID:    instructorID,
		IncludeInactive: true,
		Limit:           100,
	})
	if err != nil {
		return nil, err
	}

	from := now
	upcoming, err := s.schedules.List(ctx, repository.ScheduleFilters{
		InstructorID: instructorID,
		From:         &from,
	})
	if err != nil {
		return nil, err
	}

	perf, err := s.analytics.InstructorPerformance(ctx, instructorID, now)
	if err != nil {
		return nil, err
	}

	return &InstructorDashboard{
		Classes:          classes,
		UpcomingSessions: upcoming,
		Performance:      perf,
	}, nil
}

func (s *Service) InstructorPerformance(ctx context.Context, instructorID int64) (*repository.InstructorPerformance, error) {
	return s.analytics.InstructorPerformance(ctx, instructorID, time.Now())
}

// CreateSchedule creates a session for one of the instructor's classes.
// End time defaults to start + class duration; capacity defaults to the
// class's capacity. Admins may schedule on behalf of any instructor.
func (s *Service) CreateSchedule(ctx context.Context, actorID int64, actorRole string, req CreateScheduleRequest) (*domain.ClassSchedule, error) {
	class, err := s.classes.GetByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if actorRole != string(domain.RoleAdmin) && class.InstructorID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	if !req.StartTime.After(now) {
		return nil, ErrScheduleInPast
	}

	endTime := req.StartTime.Add(time.Duration(class.Duration) * time.Minute)
	if req.EndTime != nil {
		if !req.EndTime.After(req.StartTime) {
			return nil, ErrValidation
		}
		endTime = *req.EndTime
	}

	capacity := class.MaxCapacity
	if req.MaxCapacity != nil {
		capacity = *req.MaxCapacity
	}

	waitlist := true
	if req.WaitlistEnabled != nil {
		waitlist = *req.WaitlistEnabled
	}

	recurring := domain.RecurringNone
	if req.RecurringType != "" {
		switch domain.RecurringType(strings.ToLower(req.RecurringType)) {
		case domain.RecurringNone, domain.RecurringDaily, domain.RecurringWeekly, domain.RecurringMonthly:
			recurring = domain.RecurringType(strings.ToLower(req.RecurringType))
		default:
			return nil, ErrValidation
		}
	}

	schedule := &domain.ClassSchedule{
		ClassID:          class.ID,
		InstructorID:     class.InstructorID,
		StartTime:        req.StartTime,
		EndTime:          endTime,
		MaxCapacity:      capacity,
		WaitlistEnabled:  waitlist,
		RecurringType:    recurring,
		RecurringEndDate: req.RecurringEndDate,
		Notes:            strings.TrimSpace(req.Notes),
	}
	if violations := validator.Validate(schedule); violations != nil {
		return nil, ErrValidation
	}

	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}
	schedule.ClassName = class.Name
	schedule.InstructorName = class.InstructorName
	return schedule, nil
}

func (s *Service) CancelSchedule(ctx context.Context, actorID int64, actorRole string, scheduleID int64, reason string) error {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if actorRole != string(domain.RoleAdmin) && schedule.InstructorID != actorID {
		return ErrForbidden
	}

	if err := s.schedules.Cancel(ctx, scheduleID, strings.TrimSpace(reason)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotMutable
		}
		return err
	}

	if s.notifier != nil {
		s.notifier.ScheduleChanged(scheduleID)
	}
	return nil
}

// CompleteSchedule closes a past session and marks its confirmed bookings
// completed, which is what makes attendees review-eligible.
func (s *Service) CompleteSchedule(ctx context.Context, actorID int64, actorRole string, scheduleID int64) error {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if actorRole != string(domain.RoleAdmin) && schedule.InstructorID != actorID {
		return ErrForbidden
	}

	now := time.Now()
	if schedule.StartTime.After(now) {
		return ErrScheduleNotEnded
	}

	if err := s.schedules.Complete(ctx, scheduleID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotMutable
		}
		return err
	}

	if s.notifier != nil {
		s.notifier.ScheduleChanged(scheduleID)
	}
	return nil
}

// ---- admin surface ----

func (s *Service) ListAllCategories(ctx context.Context) ([]domain.ClassCategory, error) {
	return s.categories.ListAll(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*domain.ClassCategory, error) {
	c := &domain.ClassCategory{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if c.Name == "" {
		return nil, ErrValidation
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req UpdateCategoryRequest) (*domain.ClassCategory, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Icon != nil {
		c.Icon = *req.Icon
	}
	if req.Color != nil {
		c.Color = *req.Color
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if c.Name == "" {
		return nil, ErrValidation
	}

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) CreateClass(ctx context.Context, req CreateClassRequest) (*domain.Class, error) {
	instructor, err := s.users.GetByID(ctx, req.InstructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !instructor.IsInstructor() && !instructor.IsAdmin() {
		return nil, ErrNotInstructor
	}
	if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	difficulty := domain.DifficultyAllLevels
	if req.DifficultyLevel != "" {
		parsed, ok := domain.ParseDifficultyLevel(req.DifficultyLevel)
		if !ok {
			return nil, ErrValidation
		}
		difficulty = parsed
	}

	location := domain.LocationInPerson
	switch domain.LocationType(req.LocationType) {
	case "", domain.LocationInPerson:
	case domain.LocationVirtual:
		location = domain.LocationVirtual
	case domain.LocationHybrid:
		location = domain.LocationHybrid
	default:
		return nil, ErrValidation
	}

	c := &domain.Class{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		InstructorID:    req.InstructorID,
		Duration:        req.Duration,
		DifficultyLevel: difficulty,
		MaxCapacity:     req.MaxCapacity,
		LocationType:    location,
		LocationName:    req.LocationName,
		LocationAddress: req.LocationAddress,
		Requirements:    req.Requirements,
		WhatToExpect:    req.WhatToExpect,
		Benefits:        req.Benefits,
		Price:           req.Price,
		Currency:        req.Currency,
		IsActive:        true,
		IsFeatured:      req.IsFeatured,
		Image:           req.Image,
		VideoURL:        req.VideoURL,
	}
	if violations := validator.Validate(c); violations != nil {
		return nil, ErrValidation
	}

	if err := s.classes.Create(ctx, c); err != nil {
		return nil, err
	}
	c.InstructorName = instructor.DisplayName()
	return c, nil
}

func (s *Service) UpdateClass(ctx context.Context, id int64, req UpdateClassRequest) (*domain.Class, error) {
	c, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		c.CategoryID = *req.CategoryID
	}
	if req.Duration != nil {
		c.Duration = *req.Duration
	}
	if req.DifficultyLevel != nil {
		parsed, ok := domain.ParseDifficultyLevel(*req.DifficultyLevel)
		if !ok {
			return nil, ErrValidation
		}
		c.DifficultyLevel = parsed
	}
	if req.MaxCapacity != nil {
		c.MaxCapacity = *req.MaxCapacity
	}
	if req.LocationType != nil {
		switch domain.LocationType(*req.LocationType) {
		case domain.LocationInPerson, domain.LocationVirtual, domain.LocationHybrid:
			c.LocationType = domain.LocationType(*req.LocationType)
		default:
			return nil, ErrValidation
		}
	}
	if req.LocationName != nil {
		c.LocationName = *req.LocationName
	}
	if req.LocationAddress != nil {
		c.LocationAddress = *req.LocationAddress
	}
	if req.Requirements != nil {
		c.Requirements = *req.Requirements
	}
	if req.WhatToExpect != nil {
		c.WhatToExpect = *req.WhatToExpect
	}
	if req.Benefits != nil {
		c.Benefits = *req.Benefits
	}
	if req.Price != nil {
		c.Price = req.Price
	}
	if req.Currency != nil {
		c.Currency = *req.Currency
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		c.IsFeatured = *req.IsFeatured
	}
	if req.Image != nil {
		c.Image = *req.Image
	}
	if req.VideoURL != nil {
		c.VideoURL = *req.VideoURL
	}

	if violations := validator.Validate(c); violations != nil {
		return nil, ErrValidation
	}

	if err := s.classes.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Analytics(ctx context.Context, trendDays int) (*AdminAnalytics, error) {
	totals, err := s.analytics.Totals(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.analytics.BookingsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.analytics.TopClasses(ctx, 10)
	if err != nil {
		return nil, err
	}
	trend, err := s.analytics.BookingTrend(ctx, trendDays)
	if err != nil {
		return nil, err
	}
	return &AdminAnalytics{
		Totals:             totals,
		BookingsByCategory: byCategory,
		TopClasses:         top,
		Trend:              trend,
	}, nil
}
