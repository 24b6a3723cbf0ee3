package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// User is an identity record. Password carries the bcrypt hash and is never
// serialized; Scrubbed() is applied on top before users leave the service
// layer so the hash cannot leak through a partial-update echo either.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:64"`
	Name     string   `json:"name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password string   `json:"-" gorm:"not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:16;index"`

	// Profile info
	Class     *string `json:"class,omitempty" gorm:"size:100"`
	Phone     *string `json:"phone,omitempty" gorm:"size:32"`
	Address   *string `json:"address,omitempty" gorm:"size:500"`
	JoinDate  *string `json:"joinDate,omitempty" gorm:"size:64"`
	AvatarURL *string `json:"avatarUrl,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Scrubbed returns a copy with the credential hash removed.
func (u User) Scrubbed() *User {
	u.Password = ""
	return &u
}
