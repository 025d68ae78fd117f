package repository

import (
	"context"
	"time"

	"getfit/internal/domain"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

type CategoryModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	Icon        *string   `gorm:"column:icon"`
	Color       *string   `gorm:"column:color"`
	IsActive    bool      `gorm:"column:is_active;index"`
	SortOrder   int       `gorm:"column:sort_order"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (CategoryModel) TableName() string { return "class_categories" }

func toDomainCategory(m CategoryModel) *domain.ClassCategory {
	var desc, icon, color string
	if m.Description != nil {
		desc = *m.Description
	}
	if m.Icon != nil {
		icon = *m.Icon
	}
	if m.Color != nil {
		color = *m.Color
	}

	return &domain.ClassCategory{
		ID:          m.ID,
		Name:        m.Name,
		Description: desc,
		Icon:        icon,
		Color:       color,
		IsActive:    m.IsActive,
		SortOrder:   m.SortOrder,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toCategoryModel(c *domain.ClassCategory) CategoryModel {
	return CategoryModel{
		ID:          c.ID,
		Name:        c.Name,
		Description: nullableString(c.Description),
		Icon:        nullableString(c.Icon),
		Color:       nullableString(c.Color),
		IsActive:    c.IsActive,
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.ClassCategory) error {
	m := toCategoryModel(c)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	count := c.ClassCount
	*c = *toDomainCategory(m)
	c.ClassCount = count
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.ClassCategory, error) {
	var m CategoryModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	c := toDomainCategory(m)

	var cnt int64
	if err := r.db.WithContext(ctx).Model(&ClassModel{}).
		Where("category_id = ? AND is_active = ?", id, true).
		Count(&cnt).Error; err != nil {
		return nil, err
	}
	c.ClassCount = cnt
	return c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.ClassCategory) error {
	m := toCategoryModel(c)
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	count := c.ClassCount
	*c = *toDomainCategory(m)
	c.ClassCount = count
	return nil
}

type categoryWithCount struct {
	CategoryModel
	ClassCount int64 `gorm:"column:class_count"`
}

// ListActive returns active categories ordered for display, each annotated
// with its active class count.
func (r *CategoryRepository) ListActive(ctx context.Context) ([]domain.ClassCategory, error) {
	var rows []categoryWithCount
	err := r.db.WithContext(ctx).
		Table("class_categories").
		Select("class_categories.*, COUNT(classes.id) AS class_count").
		Joins("LEFT JOIN classes ON classes.category_id = class_categories.id AND classes.is_active = ?", true).
		Where("class_categories.is_active = ?", true).
		Group("class_categories.id").
		Order("class_categories.sort_order, class_categories.name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.ClassCategory, 0, len(rows))
	for _, m := range rows {
		c := toDomainCategory(m.CategoryModel)
		c.ClassCount = m.ClassCount
		out = append(out, *c)
	}
	return out, nil
}

// ListAll returns every category regardless of active flag (admin view).
func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.ClassCategory, error) {
	var rows []CategoryModel
	err := r.db.WithContext(ctx).
		Order("sort_order, name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.ClassCategory, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainCategory(m))
	}
	return out, nil
}
