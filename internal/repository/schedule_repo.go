package repository

import (
	"context"
	"time"

	"getfit/internal/domain"

	"gorm.io/gorm"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

type ScheduleModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	ClassID            int64      `gorm:"column:class_id;index"`
	InstructorID       int64      `gorm:"column:instructor_id;index"`
	StartTime          time.Time  `gorm:"column:start_time;index"`
	EndTime            time.Time  `gorm:"column:end_time"`
	MaxCapacity        int        `gorm:"column:max_capacity"`
	BookedSlots        int        `gorm:"column:booked_slots"`
	WaitlistEnabled    bool       `gorm:"column:waitlist_enabled"`
	RecurringType      string     `gorm:"column:recurring_type;index"`
	RecurringEndDate   *time.Time `gorm:"column:recurring_end_date"`
	ParentScheduleID   *int64     `gorm:"column:parent_schedule_id;index"`
	Status             string     `gorm:"column:status;index"`
	Notes              *string    `gorm:"column:notes;type:text"`
	CancellationReason *string    `gorm:"column:cancellation_reason;type:text"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (ScheduleModel) TableName() string { return "class_schedules" }

func toDomainSchedule(m ScheduleModel) *domain.ClassSchedule {
	s := &domain.ClassSchedule{
		ID:               m.ID,
		ClassID:          m.ClassID,
		InstructorID:     m.InstructorID,
		StartTime:        m.StartTime,
		EndTime:          m.EndTime,
		MaxCapacity:      m.MaxCapacity,
		BookedSlots:      m.BookedSlots,
		WaitlistEnabled:  m.WaitlistEnabled,
		RecurringType:    domain.RecurringType(m.RecurringType),
		RecurringEndDate: m.RecurringEndDate,
		ParentScheduleID: m.ParentScheduleID,
		Status:           domain.ScheduleStatus(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Notes != nil {
		s.Notes = *m.Notes
	}
	if m.CancellationReason != nil {
		s.CancellationReason = *m.CancellationReason
	}
	return s
}

func toScheduleModel(s *domain.ClassSchedule) ScheduleModel {
	return ScheduleModel{
		ID:                 s.ID,
		ClassID:            s.ClassID,
		InstructorID:       s.InstructorID,
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		MaxCapacity:        s.MaxCapacity,
		BookedSlots:        s.BookedSlots,
		WaitlistEnabled:    s.WaitlistEnabled,
		RecurringType:      string(s.RecurringType),
		RecurringEndDate:   s.RecurringEndDate,
		ParentScheduleID:   s.ParentScheduleID,
		Status:             string(s.Status),
		Notes:              nullableString(s.Notes),
		CancellationReason: nullableString(s.CancellationReason),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

type scheduleRow struct {
	ScheduleModel
	ClassName           string `gorm:"column:class_name"`
	InstructorFirstName string `gorm:"column:instructor_first_name"`
	InstructorLastName  string `gorm:"column:instructor_last_name"`
	InstructorEmail     string `gorm:"column:instructor_email"`
}

func (row scheduleRow) toDomain() *domain.ClassSchedule {
	s := toDomainSchedule(row.ScheduleModel)
	s.ClassName = row.ClassName
	s.InstructorName = displayName(row.InstructorFirstName, row.InstructorLastName, row.InstructorEmail)
	return s
}

const scheduleJoinSelect = "class_schedules.*, " +
	"classes.name AS class_name, " +
	"users.first_name AS instructor_first_name, " +
	"users.last_name AS instructor_last_name, " +
	"users.email AS instructor_email"

// Create persists a new schedule. Status is always derived, never taken from
// the caller.
func (r *ScheduleRepository) Create(ctx context.Context, s *domain.ClassSchedule) error {
	s.Status = domain.DeriveScheduleStatus(domain.ScheduleActive, s.BookedSlots, s.MaxCapacity, s.StartTime, time.Now())
	m := toScheduleModel(s)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*s = *toDomainSchedule(m)
	return nil
}

// Save rewrites the schedule row, recomputing the derived status first.
func (r *ScheduleRepository) Save(ctx context.Context, s *domain.ClassSchedule) error {
	s.Status = domain.DeriveScheduleStatus(s.Status, s.BookedSlots, s.MaxCapacity, s.StartTime, time.Now())
	m := toScheduleModel(s)
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*s = *toDomainSchedule(m)
	return nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*domain.ClassSchedule, error) {
	var row scheduleRow
	err := r.db.WithContext(ctx).
		Table("class_schedules").
		Select(scheduleJoinSelect).
		Joins("JOIN classes ON classes.id = class_schedules.class_id").
		Joins("JOIN users ON users.id = class_schedules.instructor_id").
		Where("class_schedules.id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

type ScheduleFilters struct {
	ClassID      int64
	CategoryID   int64
	InstructorID int64
	From         *time.Time
	To           *time.Time
	Status       string
	Limit        int
	Offset       int
}

func (r *ScheduleRepository) List(ctx context.Context, f ScheduleFilters) ([]domain.ClassSchedule, error) {
	q := r.db.WithContext(ctx).
		Table("class_schedules").
		Select(scheduleJoinSelect).
		Joins("JOIN classes ON classes.id = class_schedules.class_id").
		Joins("JOIN users ON users.id = class_schedules.instructor_id")

	if f.ClassID > 0 {
		q = q.Where("class_schedules.class_id = ?", f.ClassID)
	}
	if f.CategoryID > 0 {
		q = q.Where("classes.category_id = ?", f.CategoryID)
	}
	if f.InstructorID > 0 {
		q = q.Where("class_schedules.instructor_id = ?", f.InstructorID)
	}
	if f.From != nil {
		q = q.Where("class_schedules.start_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("class_schedules.start_time < ?", *f.To)
	}
	if f.Status != "" {
		q = q.Where("class_schedules.status = ?", f.Status)
	}

	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 200
	}

	var rows []scheduleRow
	if err := q.Order("class_schedules.start_time").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.ClassSchedule, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

// CountUpcomingByClass returns the number of upcoming bookable sessions.
func (r *ScheduleRepository) CountUpcomingByClass(ctx context.Context, classID int64, now time.Time) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&ScheduleModel{}).
		Where("class_id = ? AND start_time >= ? AND status IN ?", classID, now, []string{
			string(domain.ScheduleActive), string(domain.ScheduleFull),
		}).
		Count(&cnt).Error
	return cnt, err
}

// Cancel marks a schedule cancelled with a reason. Cancelled is terminal and
// is the one status transition that is not derived.
func (r *ScheduleRepository) Cancel(ctx context.Context, id int64, reason string) error {
	res := r.db.WithContext(ctx).Model(&ScheduleModel{}).
		Where("id = ? AND status NOT IN ?", id, []string{
			string(domain.ScheduleCancelled), string(domain.ScheduleCompleted),
		}).
		Updates(map[string]any{
			"status":              string(domain.ScheduleCancelled),
			"cancellation_reason": reason,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Complete transitions a past session out of active/full and marks its
// confirmed bookings completed, in one transaction.
func (r *ScheduleRepository) Complete(ctx context.Context, id int64, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ScheduleModel{}).
			Where("id = ? AND status IN ? AND start_time < ?", id, []string{
				string(domain.ScheduleActive), string(domain.ScheduleFull),
			}, now).
			Updates(map[string]any{
				"status":     string(domain.ScheduleCompleted),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&BookingModel{}).
			Where("class_schedule_id = ? AND status = ?", id, string(domain.BookingBooked)).
			Updates(map[string]any{
				"status":     string(domain.BookingCompleted),
				"updated_at": now,
			}).Error
	})
}
