package repository

import (
	"context"
	"strings"
	"time"

	"getfit/internal/domain"

	"gorm.io/gorm"
)

type ClassRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

type ClassModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	Name            string    `gorm:"column:name;index"`
	Description     string    `gorm:"column:description;type:text"`
	CategoryID      int64     `gorm:"column:category_id;index"`
	InstructorID    int64     `gorm:"column:instructor_id;index"`
	Duration        int       `gorm:"column:duration"`
	DifficultyLevel string    `gorm:"column:difficulty_level;index"`
	MaxCapacity     int       `gorm:"column:max_capacity"`
	LocationType    string    `gorm:"column:location_type;index"`
	LocationName    *string   `gorm:"column:location_name"`
	LocationAddress *string   `gorm:"column:location_address"`
	Requirements    *string   `gorm:"column:requirements;type:text"`
	WhatToExpect    *string   `gorm:"column:what_to_expect;type:text"`
	Benefits        *string   `gorm:"column:benefits;type:text"`
	Price           *float64  `gorm:"column:price"`
	Currency        string    `gorm:"column:currency"`
	IsActive        bool      `gorm:"column:is_active;index"`
	IsFeatured      bool      `gorm:"column:is_featured;index"`
	Image           *string   `gorm:"column:image"`
	VideoURL        *string   `gorm:"column:video_url"`
	CreatedAt       time.Time `gorm:"column:created_at;index"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (ClassModel) TableName() string { return "classes" }

func toDomainClass(m ClassModel) *domain.Class {
	c := &domain.Class{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		CategoryID:      m.CategoryID,
		InstructorID:    m.InstructorID,
		Duration:        m.Duration,
		DifficultyLevel: domain.DifficultyLevel(m.DifficultyLevel),
		MaxCapacity:     m.MaxCapacity,
		LocationType:    domain.LocationType(m.LocationType),
		Price:           m.Price,
		Currency:        m.Currency,
		IsActive:        m.IsActive,
		IsFeatured:      m.IsFeatured,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.LocationName != nil {
		c.LocationName = *m.LocationName
	}
	if m.LocationAddress != nil {
		c.LocationAddress = *m.LocationAddress
	}
	if m.Requirements != nil {
		c.Requirements = *m.Requirements
	}
	if m.WhatToExpect != nil {
		c.WhatToExpect = *m.WhatToExpect
	}
	if m.Benefits != nil {
		c.Benefits = *m.Benefits
	}
	if m.Image != nil {
		c.Image = *m.Image
	}
	if m.VideoURL != nil {
		c.VideoURL = *m.VideoURL
	}
	return c
}

func toClassModel(c *domain.Class) ClassModel {
	return ClassModel{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		CategoryID:      c.CategoryID,
		InstructorID:    c.InstructorID,
		Duration:        c.Duration,
		DifficultyLevel: string(c.DifficultyLevel),
		MaxCapacity:     c.MaxCapacity,
		LocationType:    string(c.LocationType),
		LocationName:    nullableString(c.LocationName),
		LocationAddress: nullableString(c.LocationAddress),
		Requirements:    nullableString(c.Requirements),
		WhatToExpect:    nullableString(c.WhatToExpect),
		Benefits:        nullableString(c.Benefits),
		Price:           c.Price,
		Currency:        c.Currency,
		IsActive:        c.IsActive,
		IsFeatured:      c.IsFeatured,
		Image:           nullableString(c.Image),
		VideoURL:        nullableString(c.VideoURL),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type classRow struct {
	ClassModel
	CategoryName        string `gorm:"column:category_name"`
	InstructorFirstName string `gorm:"column:instructor_first_name"`
	InstructorLastName  string `gorm:"column:instructor_last_name"`
	InstructorEmail     string `gorm:"column:instructor_email"`
}

func (row classRow) toDomain() *domain.Class {
	c := toDomainClass(row.ClassModel)
	c.CategoryName = row.CategoryName
	c.InstructorName = displayName(row.InstructorFirstName, row.InstructorLastName, row.InstructorEmail)
	return c
}

func displayName(first, last, email string) string {
	name := strings.TrimSpace(first + " " + last)
	if name != "" {
		return name
	}
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func (r *ClassRepository) Create(ctx context.Context, c *domain.Class) error {
	m := toClassModel(c)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*c = *toDomainClass(m)
	return nil
}

func (r *ClassRepository) Update(ctx context.Context, c *domain.Class) error {
	m := toClassModel(c)
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*c = *toDomainClass(m)
	return nil
}

func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*domain.Class, error) {
	var row classRow
	err := r.db.WithContext(ctx).
		Table("classes").
		Select(classJoinSelect).
		Joins("JOIN class_categories ON class_categories.id = classes.category_id").
		Joins("JOIN users ON users.id = classes.instructor_id").
		Where("classes.id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

const classJoinSelect = "classes.*, " +
	"class_categories.name AS category_name, " +
	"users.first_name AS instructor_first_name, " +
	"users.last_name AS instructor_last_name, " +
	"users.email AS instructor_email"

type ClassFilters struct {
	Query           string
	CategoryID      int64
	InstructorID    int64
	DifficultyLevel string
	LocationType    string
	FeaturedOnly    bool
	IncludeInactive bool
	MinPrice        *float64
	MaxPrice        *float64
	Limit           int
	Offset          int
}

func (r *ClassRepository) List(ctx context.Context, f ClassFilters) ([]domain.Class, int64, error) {
	q := r.db.WithContext(ctx).
		Table("classes").
		Joins("JOIN class_categories ON class_categories.id = classes.category_id").
		Joins("JOIN users ON users.id = classes.instructor_id")

	if !f.IncludeInactive {
		q = q.Where("classes.is_active = ?", true)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(f.Query)) + "%"
		q = q.Where("LOWER(classes.name) LIKE ? OR LOWER(classes.description) LIKE ?", like, like)
	}
	if f.CategoryID > 0 {
		q = q.Where("classes.category_id = ?", f.CategoryID)
	}
	if f.InstructorID > 0 {
		q = q.Where("classes.instructor_id = ?", f.InstructorID)
	}
	if f.DifficultyLevel != "" {
		q = q.Where("classes.difficulty_level = ?", f.DifficultyLevel)
	}
	if f.LocationType != "" {
		q = q.Where("classes.location_type = ?", f.LocationType)
	}
	if f.FeaturedOnly {
		q = q.Where("classes.is_featured = ?", true)
	}
	if f.MinPrice != nil {
		q = q.Where("classes.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("classes.price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	var rows []classRow
	err := q.Select(classJoinSelect).
		Order("classes.is_featured DESC, classes.created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.Class, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, total, nil
}
