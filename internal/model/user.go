package model

import "time"

// Role names stored on User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered patron or librarian.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         string    `json:"role" gorm:"size:20;not null;default:'user'"`
	Phone        string    `json:"phone,omitempty" gorm:"size:32"`
	Email        string    `json:"email,omitempty" gorm:"size:255"`
	MaxBorrow    int       `json:"max_borrow" gorm:"not null;default:5"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user was registered with the admin code.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
