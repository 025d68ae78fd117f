package repository

import (
	"context"
	"strconv"
	"time"

	"getfit/internal/domain"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

type ReviewModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	UserID     int64     `gorm:"column:user_id;index;uniqueIndex:uq_reviews_user_schedule,priority:1"`
	ScheduleID int64     `gorm:"column:class_schedule_id;uniqueIndex:uq_reviews_user_schedule,priority:2"`
	ClassID    int64     `gorm:"column:class_id;index"`
	Rating     int       `gorm:"column:rating;index"`
	Review     *string   `gorm:"column:review;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;index"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (ReviewModel) TableName() string { return "class_reviews" }

func toDomainReview(m ReviewModel) *domain.ClassReview {
	r := &domain.ClassReview{
		ID:         m.ID,
		UserID:     m.UserID,
		ScheduleID: m.ScheduleID,
		ClassID:    m.ClassID,
		Rating:     m.Rating,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Review != nil {
		r.Review = *m.Review
	}
	return r
}

func toReviewModel(r *domain.ClassReview) ReviewModel {
	return ReviewModel{
		ID:         r.ID,
		UserID:     r.UserID,
		ScheduleID: r.ScheduleID,
		ClassID:    r.ClassID,
		Rating:     r.Rating,
		Review:     nullableString(r.Review),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.ClassReview) error {
	m := toReviewModel(rv)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	userName, className := rv.UserName, rv.ClassName
	*rv = *toDomainReview(m)
	rv.UserName = userName
	rv.ClassName = className
	return nil
}

func (r *ReviewRepository) ExistsForUserSchedule(ctx context.Context, userID, scheduleID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&ReviewModel{}).
		Where("user_id = ? AND class_schedule_id = ?", userID, scheduleID).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

type reviewRow struct {
	ReviewModel
	UserFirstName string `gorm:"column:user_first_name"`
	UserLastName  string `gorm:"column:user_last_name"`
	UserEmail     string `gorm:"column:user_email"`
	ClassName     string `gorm:"column:class_name"`
}

func (row reviewRow) toDomain() *domain.ClassReview {
	rv := toDomainReview(row.ReviewModel)
	rv.UserName = displayName(row.UserFirstName, row.UserLastName, row.UserEmail)
	rv.ClassName = row.ClassName
	return rv
}

const reviewJoinSelect = "class_reviews.*, " +
	"users.first_name AS user_first_name, " +
	"users.last_name AS user_last_name, " +
	"users.email AS user_email, " +
	"classes.name AS class_name"

func (r *ReviewRepository) reviewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("class_reviews").
		Select(reviewJoinSelect).
		Joins("JOIN users ON users.id = class_reviews.user_id").
		Joins("JOIN classes ON classes.id = class_reviews.class_id")
}

func (r *ReviewRepository) ListByClass(ctx context.Context, classID int64, limit, offset int) ([]domain.ClassReview, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []reviewRow
	err := r.reviewQuery(ctx).
		Where("class_reviews.class_id = ?", classID).
		Order("class_reviews.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.ClassReview, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ClassReview, error) {
	var rows []reviewRow
	err := r.reviewQuery(ctx).
		Where("class_reviews.user_id = ?", userID).
		Order("class_reviews.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.ClassReview, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

// StatsByClass aggregates count, mean rating and the 1..5 distribution.
// AverageRating is nil when there are no reviews.
func (r *ReviewRepository) StatsByClass(ctx context.Context, classID int64) (*domain.ReviewStats, error) {
	stats := &domain.ReviewStats{
		Distribution: map[string]int64{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}

	type aggRow struct {
		Total int64    `gorm:"column:total"`
		Avg   *float64 `gorm:"column:avg_rating"`
	}
	var agg aggRow
	err := r.db.WithContext(ctx).Model(&ReviewModel{}).
		Select("COUNT(*) AS total, AVG(rating) AS avg_rating").
		Where("class_id = ?", classID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	stats.TotalReviews = agg.Total
	stats.AverageRating = agg.Avg

	type distRow struct {
		Rating int   `gorm:"column:rating"`
		Count  int64 `gorm:"column:count"`
	}
	var dist []distRow
	err = r.db.WithContext(ctx).Model(&ReviewModel{}).
		Select("rating, COUNT(*) AS count").
		Where("class_id = ?", classID).
		Group("rating").
		Scan(&dist).Error
	if err != nil {
		return nil, err
	}
	for _, d := range dist {
		stats.Distribution[strconv.Itoa(d.Rating)] = d.Count
	}
	return stats, nil
}
