package domain

import "time"

type ClassReview struct {
	ID         int64 `json:"id"`
	UserID     int64 `json:"user_id"`
	ScheduleID int64 `json:"schedule_id" validate:"required,gt=0"`
	// ClassID is denormalized from the schedule at creation so reviews keep
	// pointing at the class even if the schedule row changes.
	ClassID   int64     `json:"class_id"`
	Rating    int       `json:"rating" validate:"required,gte=1,lte=5"`
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserName  string `json:"user_name,omitempty"`
	ClassName string `json:"class_name,omitempty"`
}

// ReviewStats aggregates ratings for one class.
type ReviewStats struct {
	TotalReviews  int64            `json:"total_reviews"`
	AverageRating *float64         `json:"average_rating"`
	Distribution  map[string]int64 `json:"rating_distribution"`
}
