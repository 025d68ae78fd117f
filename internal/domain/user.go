package domain

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

func ParseUserRole(s string) (UserRole, bool) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleInstructor:
		return RoleInstructor, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

type User struct {
	ID                  int64      `json:"id"`
	Email               string     `json:"email" validate:"required,email"`
	PasswordHash        string     `json:"-"`
	Role                UserRole   `json:"role"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Phone               string     `json:"phone,omitempty"`
	Bio                 string     `json:"bio,omitempty"`
	ProfilePicture      string     `json:"profile_picture,omitempty"`
	IsActive            bool       `json:"is_active"`
	IsVerified          bool       `json:"is_verified"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	DateJoined          time.Time  `json:"date_joined"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// FullName joins first and last name, trimming when either is empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName falls back to the email local part when no name is set.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin }
