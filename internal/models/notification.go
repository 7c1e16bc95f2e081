// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Notification type codes.
const (
	// NotifyTypeStoryPublished is sent to every follower of the author
	// (plus the author, as a publish receipt) when a story goes live.
	NotifyTypeStoryPublished int16 = 1
	// NotifyTypeStoryLiked is sent to the story's author.
	NotifyTypeStoryLiked int16 = 2
	// NotifyTypeFollow is sent to the followee on a new follow edge.
	NotifyTypeFollow int16 = 3
	// NotifyTypeUnfollow is sent to the followee on edge removal.
	NotifyTypeUnfollow int16 = 4
	// NotifyTypeProfileUpdated is a self-notification.
	NotifyTypeProfileUpdated int16 = 5
)

// NotifyTypeName returns the wire name for a notification type code.
func NotifyTypeName(code int16) string {
	switch code {
	case NotifyTypeStoryPublished:
		return "story_published"
	case NotifyTypeStoryLiked:
		return "story_liked"
	case NotifyTypeFollow:
		return "follow"
	case NotifyTypeUnfollow:
		return "unfollow"
	case NotifyTypeProfileUpdated:
		return "profile_updated"
	default:
		return "unknown"
	}
}

// Notification is an append-only notification row. Rows are flipped to read
// in bulk when the recipient fetches their list.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorID     uint      `gorm:"not null;index" json:"actor_id"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	Type        int16     `gorm:"not null" json:"type"`
	StoryID     *uint     `gorm:"index" json:"story_id,omitempty"`
	IsRead      bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	Actor User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TypeName returns the wire name of the notification's type.
func (n *Notification) TypeName() string {
	return NotifyTypeName(n.Type)
}
