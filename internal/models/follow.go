// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// FollowEdge is a directed follow relationship. The (follower, followee)
// pair is unique; follow and unfollow are idempotent against it.
type FollowEdge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`
}

// TableName specifies the table name for GORM
func (FollowEdge) TableName() string {
	return "follow_edges"
}
