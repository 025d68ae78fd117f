package domain

import (
	"strings"
	"time"
)

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
	DifficultyAllLevels    DifficultyLevel = "all_levels"
)

func ParseDifficultyLevel(s string) (DifficultyLevel, bool) {
	switch DifficultyLevel(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyBeginner:
		return DifficultyBeginner, true
	case DifficultyIntermediate:
		return DifficultyIntermediate, true
	case DifficultyAdvanced:
		return DifficultyAdvanced, true
	case DifficultyAllLevels:
		return DifficultyAllLevels, true
	}
	return "", false
}

type LocationType string

const (
	LocationInPerson LocationType = "in_person"
	LocationVirtual  LocationType = "virtual"
	LocationHybrid   LocationType = "hybrid"
)

const (
	MinClassDuration = 15  // minutes
	MaxClassDuration = 300 // minutes
)

type Class struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description"`
	CategoryID      int64           `json:"category_id" validate:"required,gt=0"`
	InstructorID    int64           `json:"instructor_id" validate:"required,gt=0"`
	Duration        int             `json:"duration" validate:"required,gte=15,lte=300"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level"`
	MaxCapacity     int             `json:"max_capacity" validate:"required,gte=1,lte=1000"`
	LocationType    LocationType    `json:"location_type"`
	LocationName    string          `json:"location_name,omitempty"`
	LocationAddress string          `json:"location_address,omitempty"`
	Requirements    string          `json:"requirements,omitempty"`
	WhatToExpect    string          `json:"what_to_expect,omitempty"`
	Benefits        string          `json:"benefits,omitempty"`
	Price           *float64        `json:"price,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	IsActive        bool            `json:"is_active"`
	IsFeatured      bool            `json:"is_featured"`
	Image           string          `json:"image,omitempty"`
	VideoURL        string          `json:"video_url,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	CategoryName   string `json:"category_name,omitempty"`
	InstructorName string `json:"instructor_name,omitempty"`
}
