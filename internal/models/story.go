// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// StoryStatus represents the lifecycle state of a story.
type StoryStatus string

const (
	// StoryStatusDraft is a story visible only to its author.
	StoryStatusDraft StoryStatus = "draft"
	// StoryStatusPublished is a story visible in feeds.
	StoryStatusPublished StoryStatus = "published"
	// StoryStatusHeld is a story pulled from feeds by an admin.
	StoryStatusHeld StoryStatus = "held"
)

// StoryType is a lookup row classifying stories (fairy tale, comic, ...).
type StoryType struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Label string `gorm:"unique;not null" json:"label"`
}

// TableName specifies the table name for GORM
func (StoryType) TableName() string {
	return "story_types"
}

// Story represents a multi-page story owned by a single author.
type Story struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	User        User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	CoverImage  string      `json:"cover_image"`
	Status      StoryStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	StoryTypeID *uint       `gorm:"index" json:"story_type_id,omitempty"`
	StoryType   *StoryType  `gorm:"foreignKey:StoryTypeID" json:"story_type,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Pages []StoryPage `gorm:"foreignKey:StoryID" json:"pages,omitempty"`
}

// StoryPage is a single ordered page of a story. Page numbers are contiguous
// starting at 1; deleting a page renumbers the remainder.
type StoryPage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	// Uniqueness of (story_id, page_number) is maintained by the page
	// operations themselves; a plain index keeps bulk renumbering in one
	// UPDATE statement without transient constraint violations.
	StoryID     uint      `gorm:"not null;index:idx_story_page_number" json:"story_id"`
	PageNumber  int       `gorm:"not null;index:idx_story_page_number" json:"page_number"`
	Content     string    `gorm:"type:text" json:"content"`
	ContentType string    `gorm:"type:varchar(30)" json:"content_type"`
	Format      string    `gorm:"type:varchar(30)" json:"format"`
	Media       string    `json:"media"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (StoryPage) TableName() string {
	return "story_pages"
}

// StorySummary is a feed row: one story annotated with its reaction
// aggregates for a particular viewer. All count columns are produced by
// correlated COUNT subqueries so a story with no related rows still yields
// zeros, and the type label comes from a LEFT JOIN so a dangling story type
// yields an empty label instead of dropping the row.
type StorySummary struct {
	StoryID        uint        `gorm:"column:story_id" json:"story_id"`
	Title          string      `gorm:"column:title" json:"title"`
	Description    string      `gorm:"column:description" json:"description"`
	CoverImage     string      `gorm:"column:cover_image" json:"cover_image"`
	AuthorID       uint        `gorm:"column:author_id" json:"author_id"`
	AuthorName     string      `gorm:"column:author_name" json:"author_name"`
	PageCount      int         `gorm:"column:page_count" json:"page_count"`
	LikeCount      int         `gorm:"column:like_count" json:"like_count"`
	ViewCount      int         `gorm:"column:view_count" json:"view_count"`
	CommentCount   int         `gorm:"column:comment_count" json:"comment_count"`
	ViewerHasLiked bool        `gorm:"column:viewer_has_liked" json:"viewer_has_liked"`
	StoryTypeLabel string      `gorm:"column:story_type_label" json:"story_type"`
	Status         StoryStatus `gorm:"column:status" json:"status"`
	CreatedAt      time.Time   `gorm:"column:created_at" json:"created_at"`
}
