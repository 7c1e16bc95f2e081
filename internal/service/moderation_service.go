package service

import (
	"context"
	"errors"

	"vtelltales/internal/models"
	"vtelltales/internal/repository"

	"gorm.io/gorm"
)

// ModerationService records report/block flags and exposes the admin
// moderation surface.
type ModerationService struct {
	modRepo   repository.ModerationRepository
	userRepo  repository.UserRepository
	storyRepo repository.StoryRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(modRepo repository.ModerationRepository, userRepo repository.UserRepository, storyRepo repository.StoryRepository) *ModerationService {
	return &ModerationService{
		modRepo:   modRepo,
		userRepo:  userRepo,
		storyRepo: storyRepo,
	}
}

// ReportOrBlockUser upserts the caller's flag against another user.
// flag=1 reports, flag=2 blocks; a block removes the target from every feed
// the caller requests.
func (s *ModerationService) ReportOrBlockUser(ctx context.Context, userID, targetID uint, flag int16) error {
	if userID == targetID {
		return models.NewValidationError("You cannot report or block yourself")
	}
	if flag != models.FlagReport && flag != models.FlagBlock {
		return models.NewValidationError("Flag must be 1 (report) or 2 (block)")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", targetID)
		}
		return models.NewInternalError(err)
	}
	if err := s.modRepo.UpsertUserFlag(ctx, userID, targetID, flag); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ReportOrBlockStory upserts the caller's flag against a story.
func (s *ModerationService) ReportOrBlockStory(ctx context.Context, userID, storyID uint, flag int16) error {
	if flag != models.FlagReport && flag != models.FlagBlock {
		return models.NewValidationError("Flag must be 1 (report) or 2 (block)")
	}
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Story", storyID)
		}
		return models.NewInternalError(err)
	}
	if story.UserID == userID {
		return models.NewValidationError("You cannot report or block your own story")
	}
	if err := s.modRepo.UpsertStoryFlag(ctx, userID, storyID, flag); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Unblock removes the caller's flag against a user.
func (s *ModerationService) UnblockUser(ctx context.Context, userID, targetID uint) error {
	if err := s.modRepo.ClearUserFlag(ctx, userID, targetID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UnblockStory removes the caller's flag against a story.
func (s *ModerationService) UnblockStory(ctx context.Context, userID, storyID uint) error {
	if err := s.modRepo.ClearStoryFlag(ctx, userID, storyID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListUserReports returns flagged users for admin review.
func (s *ModerationService) ListUserReports(ctx context.Context, limit, offset int) ([]*models.ReportBlockUser, error) {
	rows, err := s.modRepo.ListUserReports(ctx, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

// ListStoryReports returns flagged stories for admin review.
func (s *ModerationService) ListStoryReports(ctx context.Context, limit, offset int) ([]*models.ReportBlockStory, error) {
	rows, err := s.modRepo.ListStoryReports(ctx, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

// SetUserBlockLevel sets the admin tri-state block on a user:
// 0 active, 1 soft-blocked, 2 hard-blocked.
func (s *ModerationService) SetUserBlockLevel(ctx context.Context, targetID uint, level int16) error {
	if level < models.AdminBlockNone || level > models.AdminBlockHard {
		return models.NewValidationError("Block level must be 0, 1 or 2")
	}
	if err := s.userRepo.SetAdminBlockLevel(ctx, targetID, level); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", targetID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// HoldStory pulls a story from feeds without deleting it.
func (s *ModerationService) HoldStory(ctx context.Context, storyID uint) error {
	if err := s.storyRepo.SetStatus(ctx, storyID, string(models.StoryStatusHeld)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Story", storyID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// ReleaseStory returns a held story to published state.
func (s *ModerationService) ReleaseStory(ctx context.Context, storyID uint) error {
	if err := s.storyRepo.SetStatus(ctx, storyID, string(models.StoryStatusPublished)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Story", storyID)
		}
		return models.NewInternalError(err)
	}
	return nil
}
