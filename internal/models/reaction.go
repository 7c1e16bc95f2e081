// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Like is a (story, user) pair; unique so a user likes a story at most once.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   uint      `gorm:"not null;index;uniqueIndex:idx_like_story_user" json:"story_id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_like_story_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// View is an append-only view event. Repeat views by the same viewer are
// counted, so there is deliberately no uniqueness constraint.
type View struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   uint      `gorm:"not null;index" json:"story_id"`
	ViewerID  uint      `gorm:"not null;index" json:"viewer_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a comment on a story.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   uint      `gorm:"not null;index" json:"story_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark is a saved story for a user; unique per (story, user) pair.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   uint      `gorm:"not null;index;uniqueIndex:idx_bookmark_story_user" json:"story_id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_bookmark_story_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionCounts holds the aggregate reaction numbers for one story, plus
// the requesting viewer's own like state. Missing aggregates resolve to zero.
type ReactionCounts struct {
	StoryID        uint `gorm:"column:story_id" json:"story_id"`
	PageCount      int  `gorm:"column:page_count" json:"page_count"`
	LikeCount      int  `gorm:"column:like_count" json:"like_count"`
	CommentCount   int  `gorm:"column:comment_count" json:"comment_count"`
	ViewCount      int  `gorm:"column:view_count" json:"view_count"`
	ViewerHasLiked bool `gorm:"column:viewer_has_liked" json:"viewer_has_liked"`
}
