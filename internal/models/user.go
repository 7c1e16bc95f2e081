// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Admin block levels for a user account. The level only ever takes these
// three values; feed queries treat anything above AdminBlockNone as held back
// from the author's own publishing, not from reading.
const (
	// AdminBlockNone marks an active account.
	AdminBlockNone int16 = 0
	// AdminBlockSoft marks a soft-blocked account (flagged by an admin).
	AdminBlockSoft int16 = 1
	// AdminBlockHard marks a hard-blocked account.
	AdminBlockHard int16 = 2
)

// User represents a user account on the platform.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Username        string    `gorm:"unique;not null" json:"username"`
	Email           string    `gorm:"unique;not null" json:"email"`
	Password        string    `gorm:"not null" json:"-"`
	Bio             string    `json:"bio"`
	Avatar          string    `json:"avatar"`
	IsAdmin         bool      `gorm:"default:false" json:"is_admin"`
	AdminBlockLevel int16     `gorm:"default:0" json:"admin_block_level"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Stories []Story `gorm:"foreignKey:UserID" json:"stories,omitempty"`
}

// UserCard is the compact author representation embedded in listings.
type UserCard struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Card returns the compact representation of the user.
func (u *User) Card() UserCard {
	return UserCard{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
