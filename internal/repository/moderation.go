package repository

import (
	"context"
	"strconv"

	"vtelltales/internal/models"
	"vtelltales/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModerationRepository stores report/block flags and computes a viewer's
// exclusion set. Only the viewer's own outgoing hard blocks (flag=2) exclude
// content; report-only flags (flag=1) are kept for admin review but do not
// affect feeds.
type ModerationRepository interface {
	UpsertUserFlag(ctx context.Context, userID, targetUserID uint, flag int16) error
	UpsertStoryFlag(ctx context.Context, userID, storyID uint, flag int16) error
	ExclusionSet(ctx context.Context, viewerID uint) (models.ExclusionSet, error)
	ListUserReports(ctx context.Context, limit, offset int) ([]*models.ReportBlockUser, error)
	ListStoryReports(ctx context.Context, limit, offset int) ([]*models.ReportBlockStory, error)
	ClearUserFlag(ctx context.Context, userID, targetUserID uint) error
	ClearStoryFlag(ctx context.Context, userID, storyID uint) error
}

type moderationRepository struct {
	db *gorm.DB
}

// NewModerationRepository creates a new moderation repository
func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) UpsertUserFlag(ctx context.Context, userID, targetUserID uint, flag int16) error {
	row := models.ReportBlockUser{UserID: userID, TargetUserID: targetUserID, Flag: flag}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"flag"}),
		}).
		Create(&row).Error
	if err == nil {
		observability.ModerationFlags.WithLabelValues("user", strconv.Itoa(int(flag))).Inc()
	}
	return err
}

func (r *moderationRepository) UpsertStoryFlag(ctx context.Context, userID, storyID uint, flag int16) error {
	row := models.ReportBlockStory{UserID: userID, StoryID: storyID, Flag: flag}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "story_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"flag"}),
		}).
		Create(&row).Error
	if err == nil {
		observability.ModerationFlags.WithLabelValues("story", strconv.Itoa(int(flag))).Inc()
	}
	return err
}

// ExclusionSet is computed fresh per feed request.
func (r *moderationRepository) ExclusionSet(ctx context.Context, viewerID uint) (models.ExclusionSet, error) {
	var excl models.ExclusionSet
	if viewerID == 0 {
		return excl, nil
	}

	if err := r.db.WithContext(ctx).
		Model(&models.ReportBlockUser{}).
		Where("user_id = ? AND flag = ?", viewerID, models.FlagBlock).
		Pluck("target_user_id", &excl.UserIDs).Error; err != nil {
		return models.ExclusionSet{}, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.ReportBlockStory{}).
		Where("user_id = ? AND flag = ?", viewerID, models.FlagBlock).
		Pluck("story_id", &excl.StoryIDs).Error; err != nil {
		return models.ExclusionSet{}, err
	}

	return excl, nil
}

func (r *moderationRepository) ListUserReports(ctx context.Context, limit, offset int) ([]*models.ReportBlockUser, error) {
	var rows []*models.ReportBlockUser
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (r *moderationRepository) ListStoryReports(ctx context.Context, limit, offset int) ([]*models.ReportBlockStory, error) {
	var rows []*models.ReportBlockStory
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (r *moderationRepository) ClearUserFlag(ctx context.Context, userID, targetUserID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND target_user_id = ?", userID, targetUserID).
		Delete(&models.ReportBlockUser{}).Error
}

func (r *moderationRepository) ClearStoryFlag(ctx context.Context, userID, storyID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND story_id = ?", userID, storyID).
		Delete(&models.ReportBlockStory{}).Error
}
