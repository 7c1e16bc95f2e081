// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Moderation flags. A report keeps the target visible; a block removes it
// from every feed the flagging user requests.
const (
	// FlagReport marks a target as reported only.
	FlagReport int16 = 1
	// FlagBlock marks a target as hard-blocked by the flagging user.
	FlagBlock int16 = 2
)

// ReportBlockUser is the viewer's own moderation flag against another user.
// One row per (user, target) pair; raising the flag again upserts the row.
type ReportBlockUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index;uniqueIndex:idx_rb_user_pair" json:"user_id"`
	TargetUserID uint      `gorm:"not null;index;uniqueIndex:idx_rb_user_pair" json:"target_user_id"`
	Flag         int16     `gorm:"not null" json:"flag"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	TargetUser User `gorm:"foreignKey:TargetUserID" json:"target_user,omitempty"`
}

// TableName specifies the table name for GORM
func (ReportBlockUser) TableName() string {
	return "report_block_users"
}

// ReportBlockStory is the per-story analog of ReportBlockUser.
type ReportBlockStory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_rb_story_pair" json:"user_id"`
	StoryID   uint      `gorm:"not null;index;uniqueIndex:idx_rb_story_pair" json:"story_id"`
	Flag      int16     `gorm:"not null" json:"flag"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Story Story `gorm:"foreignKey:StoryID" json:"story,omitempty"`
}

// TableName specifies the table name for GORM
func (ReportBlockStory) TableName() string {
	return "report_block_stories"
}

// ExclusionSet is everything a viewer has hard-blocked, computed fresh per
// feed request. Report-only flags never appear here.
type ExclusionSet struct {
	UserIDs  []uint
	StoryIDs []uint
}

// Empty reports whether the set excludes nothing.
func (e ExclusionSet) Empty() bool {
	return len(e.UserIDs) == 0 && len(e.StoryIDs) == 0
}
