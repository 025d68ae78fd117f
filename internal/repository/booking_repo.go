package repository

import (
	"context"
	"errors"
	"time"

	"getfit/internal/domain"

	"gorm.io/gorm"
)

// ErrNoSeatAvailable is returned by CreateConfirmed when the conditional
// capacity claim matched no row, i.e. the session filled up concurrently.
var ErrNoSeatAvailable = errors.New("no seat available")

// ErrBookingImmutable is returned by Cancel when the guarded update matched no
// row, i.e. the booking was cancelled or completed concurrently.
var ErrBookingImmutable = errors.New("booking already cancelled or completed")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type BookingModel struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	UserID           int64      `gorm:"column:user_id;index;uniqueIndex:uq_bookings_user_schedule,priority:1"`
	ScheduleID       int64      `gorm:"column:class_schedule_id;index;uniqueIndex:uq_bookings_user_schedule,priority:2;uniqueIndex:uq_bookings_waitlist_rank,priority:1"`
	Status           string     `gorm:"column:status;index"`
	BookingTime      time.Time  `gorm:"column:booking_time;index"`
	CancellationTime *time.Time `gorm:"column:cancellation_time"`
	IsWaitlisted     bool       `gorm:"column:is_waitlisted;index"`
	WaitlistPosition *int       `gorm:"column:waitlist_position;uniqueIndex:uq_bookings_waitlist_rank,priority:2"`
	Notes            *string    `gorm:"column:notes;type:text"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (BookingModel) TableName() string { return "bookings" }

func toDomainBooking(m BookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:               m.ID,
		UserID:           m.UserID,
		ScheduleID:       m.ScheduleID,
		Status:           domain.BookingStatus(m.Status),
		BookingTime:      m.BookingTime,
		CancellationTime: m.CancellationTime,
		IsWaitlisted:     m.IsWaitlisted,
		WaitlistPosition: m.WaitlistPosition,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Notes != nil {
		b.Notes = *m.Notes
	}
	return b
}

func toBookingModel(b *domain.Booking) BookingModel {
	return BookingModel{
		ID:               b.ID,
		UserID:           b.UserID,
		ScheduleID:       b.ScheduleID,
		Status:           string(b.Status),
		BookingTime:      b.BookingTime,
		CancellationTime: b.CancellationTime,
		IsWaitlisted:     b.IsWaitlisted,
		WaitlistPosition: b.WaitlistPosition,
		Notes:            nullableString(b.Notes),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// CreateConfirmed claims a seat and inserts the booking row in one
// transaction. The claim is a conditional update scoped to the schedule row:
//
//	UPDATE class_schedules SET booked_slots = booked_slots + 1
//	WHERE id = ? AND status = 'active' AND booked_slots < max_capacity
//
// Two concurrent requests for the last seat cannot both match; the loser gets
// ErrNoSeatAvailable. A failed insert (duplicate booking) rolls the claim
// back, so booked_slots never drifts.
func (r *BookingRepository) CreateConfirmed(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		claim := tx.Model(&ScheduleModel{}).
			Where("id = ? AND status = ? AND booked_slots < max_capacity",
				b.ScheduleID, string(domain.ScheduleActive)).
			Updates(map[string]any{
				"booked_slots": gorm.Expr("booked_slots + 1"),
				"updated_at":   now,
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrNoSeatAvailable
		}

		b.Status = domain.BookingBooked
		b.IsWaitlisted = false
		b.WaitlistPosition = nil
		if b.BookingTime.IsZero() {
			b.BookingTime = now
		}

		m := toBookingModel(b)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		*b = *toDomainBooking(m)

		// Reaching capacity flips the derived status to full.
		return tx.Model(&ScheduleModel{}).
			Where("id = ? AND status = ? AND booked_slots >= max_capacity",
				b.ScheduleID, string(domain.ScheduleActive)).
			Updates(map[string]any{
				"status":     string(domain.ScheduleFull),
				"updated_at": now,
			}).Error
	})
}

// CreateWaitlisted appends the booking to the schedule's waitlist. The dense
// rank is computed by a scalar subquery inside the INSERT itself; the unique
// (schedule, position) index turns a concurrent duplicate rank into a
// constraint violation, which callers retry.
func (r *BookingRepository) CreateWaitlisted(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if b.BookingTime.IsZero() {
			b.BookingTime = now
		}

		err := tx.Exec(`
INSERT INTO bookings (user_id, class_schedule_id, status, booking_time, is_waitlisted, waitlist_position, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?,
        (SELECT COUNT(*) + 1 FROM bookings b WHERE b.class_schedule_id = ? AND b.is_waitlisted = ?),
        ?, ?, ?)
`,
			b.UserID, b.ScheduleID, string(domain.BookingWaitlisted), b.BookingTime, true,
			b.ScheduleID, true,
			nullableString(b.Notes), now, now,
		).Error
		if err != nil {
			return err
		}

		var m BookingModel
		if err := tx.Where("user_id = ? AND class_schedule_id = ?", b.UserID, b.ScheduleID).First(&m).Error; err != nil {
			return err
		}
		*b = *toDomainBooking(m)
		return nil
	})
}

// Cancel stamps the booking cancelled and, for confirmed seats only, releases
// the seat: the counter is decremented with a floor at zero and the schedule
// drops back from full to active when capacity frees up. The status guard on
// the update makes concurrent cancels of one booking lose cleanly, so a seat
// is released at most once.
func (r *BookingRepository) Cancel(ctx context.Context, bookingID int64, reason string, now time.Time) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m BookingModel
		if err := tx.First(&m, bookingID).Error; err != nil {
			return err
		}

		wasConfirmed := m.Status == string(domain.BookingBooked) && !m.IsWaitlisted

		notes := ""
		if m.Notes != nil {
			notes = *m.Notes
		}
		if reason != "" {
			if notes != "" {
				notes += "\n"
			}
			notes += "Cancellation reason: " + reason
		}

		updates := map[string]any{
			"status":            string(domain.BookingCancelled),
			"cancellation_time": now,
			"updated_at":        now,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		res := tx.Model(&BookingModel{}).
			Where("id = ? AND status NOT IN ?", bookingID,
				[]string{string(domain.BookingCancelled), string(domain.BookingCompleted)}).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookingImmutable
		}

		if wasConfirmed {
			if err := tx.Model(&ScheduleModel{}).
				Where("id = ?", m.ScheduleID).
				Updates(map[string]any{
					"booked_slots": gorm.Expr("CASE WHEN booked_slots > 0 THEN booked_slots - 1 ELSE 0 END"),
					"updated_at":   now,
				}).Error; err != nil {
				return err
			}

			if err := tx.Model(&ScheduleModel{}).
				Where("id = ? AND status = ? AND booked_slots < max_capacity",
					m.ScheduleID, string(domain.ScheduleFull)).
				Updates(map[string]any{
					"status":     string(domain.ScheduleActive),
					"updated_at": now,
				}).Error; err != nil {
				return err
			}
		}

		var updated BookingModel
		if err := tx.First(&updated, bookingID).Error; err != nil {
			return err
		}
		out = toDomainBooking(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingRepository) UpdateNotes(ctx context.Context, bookingID int64, notes string) (*domain.Booking, error) {
	err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{"notes": notes, "updated_at": time.Now()}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, bookingID)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m BookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByUserAndSchedule(ctx context.Context, userID, scheduleID int64) (*domain.Booking, error) {
	var m BookingModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND class_schedule_id = ?", userID, scheduleID).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// ExistsForUserSchedule counts bookings of any status; a cancelled booking
// still blocks rebooking the same session.
func (r *BookingRepository) ExistsForUserSchedule(ctx context.Context, userID, scheduleID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("user_id = ? AND class_schedule_id = ?", userID, scheduleID).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *BookingRepository) HasCompletedBooking(ctx context.Context, userID, scheduleID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("user_id = ? AND class_schedule_id = ? AND status = ?",
			userID, scheduleID, string(domain.BookingCompleted)).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *BookingRepository) CountWaitlisted(ctx context.Context, scheduleID int64) (int64, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("class_schedule_id = ? AND is_waitlisted = ?", scheduleID, true).
		Count(&cnt)
	return cnt, tx.Error
}

type BookingFilters struct {
	Status       string
	UpcomingOnly bool
	PastOnly     bool
	Limit        int
	Offset       int
}

type bookingDetailsRow struct {
	BookingModel
	SchedStartTime      time.Time `gorm:"column:sched_start_time"`
	SchedEndTime        time.Time `gorm:"column:sched_end_time"`
	SchedMaxCapacity    int       `gorm:"column:sched_max_capacity"`
	SchedBookedSlots    int       `gorm:"column:sched_booked_slots"`
	SchedStatus         string    `gorm:"column:sched_status"`
	SchedClassID        int64     `gorm:"column:sched_class_id"`
	SchedInstructorID   int64     `gorm:"column:sched_instructor_id"`
	ClassName           string    `gorm:"column:class_name"`
	InstructorFirstName string    `gorm:"column:instructor_first_name"`
	InstructorLastName  string    `gorm:"column:instructor_last_name"`
	InstructorEmail     string    `gorm:"column:instructor_email"`
}

func (row bookingDetailsRow) toDomain() *domain.Booking {
	b := toDomainBooking(row.BookingModel)
	b.Schedule = &domain.ClassSchedule{
		ID:             row.ScheduleID,
		ClassID:        row.SchedClassID,
		InstructorID:   row.SchedInstructorID,
		StartTime:      row.SchedStartTime,
		EndTime:        row.SchedEndTime,
		MaxCapacity:    row.SchedMaxCapacity,
		BookedSlots:    row.SchedBookedSlots,
		Status:         domain.ScheduleStatus(row.SchedStatus),
		ClassName:      row.ClassName,
		InstructorName: displayName(row.InstructorFirstName, row.InstructorLastName, row.InstructorEmail),
	}
	return b
}

const bookingJoinSelect = "bookings.*, " +
	"class_schedules.start_time AS sched_start_time, " +
	"class_schedules.end_time AS sched_end_time, " +
	"class_schedules.max_capacity AS sched_max_capacity, " +
	"class_schedules.booked_slots AS sched_booked_slots, " +
	"class_schedules.status AS sched_status, " +
	"class_schedules.class_id AS sched_class_id, " +
	"class_schedules.instructor_id AS sched_instructor_id, " +
	"classes.name AS class_name, " +
	"users.first_name AS instructor_first_name, " +
	"users.last_name AS instructor_last_name, " +
	"users.email AS instructor_email"

func (r *BookingRepository) bookingDetailsQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("bookings").
		Select(bookingJoinSelect).
		Joins("JOIN class_schedules ON class_schedules.id = bookings.class_schedule_id").
		Joins("JOIN classes ON classes.id = class_schedules.class_id").
		Joins("JOIN users ON users.id = class_schedules.instructor_id")
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, f BookingFilters) ([]domain.Booking, error) {
	q := r.bookingDetailsQuery(ctx).Where("bookings.user_id = ?", userID)

	if f.Status != "" {
		q = q.Where("bookings.status = ?", f.Status)
	}
	now := time.Now()
	if f.UpcomingOnly {
		q = q.Where("class_schedules.start_time >= ?", now)
	}
	if f.PastOnly {
		q = q.Where("class_schedules.start_time < ?", now)
	}

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	var rows []bookingDetailsRow
	if err := q.Order("bookings.booking_time DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

func (r *BookingRepository) GetDetailsByID(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	var row bookingDetailsRow
	err := r.bookingDetailsQuery(ctx).
		Where("bookings.id = ? AND bookings.user_id = ?", bookingID, userID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *BookingRepository) GetDetailsByUserAndSchedule(ctx context.Context, userID, scheduleID int64) (*domain.Booking, error) {
	var row bookingDetailsRow
	err := r.bookingDetailsQuery(ctx).
		Where("bookings.user_id = ? AND bookings.class_schedule_id = ?", userID, scheduleID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

type UserBookingStats struct {
	Total     int64 `json:"total"`
	Upcoming  int64 `json:"upcoming"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

func (r *BookingRepository) GetStatsByUserID(ctx context.Context, userID int64) (*UserBookingStats, error) {
	var stats UserBookingStats
	base := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Joins("JOIN class_schedules ON class_schedules.id = bookings.class_schedule_id").
		Where("bookings.user_id = ? AND bookings.status = ? AND class_schedules.start_time >= ?",
			userID, string(domain.BookingBooked), time.Now()).
		Count(&stats.Upcoming).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", string(domain.BookingCompleted)).Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", string(domain.BookingCancelled)).Count(&stats.Cancelled).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
