package service

import (
	"context"
	"errors"

	"vtelltales/internal/models"
	"vtelltales/internal/repository"

	"gorm.io/gorm"
)

// EngagementService handles likes, views, comments and bookmarks.
type EngagementService struct {
	reactionRepo repository.ReactionRepository
	storyRepo    repository.StoryRepository
	notifier     *NotificationService
}

// NewEngagementService returns a new EngagementService.
func NewEngagementService(reactionRepo repository.ReactionRepository, storyRepo repository.StoryRepository, notifier *NotificationService) *EngagementService {
	return &EngagementService{
		reactionRepo: reactionRepo,
		storyRepo:    storyRepo,
		notifier:     notifier,
	}
}

// ToggleLike flips the user's like on a story and returns the new state.
// A like (not an unlike) notifies the story's author, including when authors
// like their own story.
func (s *EngagementService) ToggleLike(ctx context.Context, storyID, userID uint) (bool, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, models.NewNotFoundError("Story", storyID)
		}
		return false, models.NewInternalError(err)
	}

	liked, err := s.reactionRepo.ToggleLike(ctx, storyID, userID)
	if err != nil {
		return false, models.NewInternalError(err)
	}

	if liked {
		s.notifier.StoryLiked(ctx, userID, story.UserID, storyID)
	}
	return liked, nil
}

// RecordView appends a view event. Repeat views count.
func (s *EngagementService) RecordView(ctx context.Context, storyID, viewerID uint) error {
	if err := s.reactionRepo.AddView(ctx, storyID, viewerID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// AddComment appends a comment to a story.
func (s *EngagementService) AddComment(ctx context.Context, storyID, userID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if _, err := s.storyRepo.GetByID(ctx, storyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Story", storyID)
		}
		return nil, models.NewInternalError(err)
	}

	comment := &models.Comment{StoryID: storyID, UserID: userID, Content: content}
	if err := s.reactionRepo.CreateComment(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

// ListComments returns a story's comments, newest first. Comments follow the
// story's own visibility: a draft or held story's comments are owner- and
// admin-only.
func (s *EngagementService) ListComments(ctx context.Context, storyID, viewerID uint, admin bool, limit, offset int) ([]*models.Comment, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Story", storyID)
		}
		return nil, models.NewInternalError(err)
	}
	if !storyReadable(story.Status, story.UserID, viewerID, admin) {
		return nil, models.NewNotFoundError("Story", storyID)
	}
	comments, err := s.reactionRepo.ListComments(ctx, storyID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// DeleteComment removes a comment by row id. Admin surface.
func (s *EngagementService) DeleteComment(ctx context.Context, commentID uint) error {
	if err := s.reactionRepo.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleBookmark flips the user's bookmark on a story.
func (s *EngagementService) ToggleBookmark(ctx context.Context, storyID, userID uint) (bool, error) {
	bookmarked, err := s.reactionRepo.ToggleBookmark(ctx, storyID, userID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return bookmarked, nil
}

// ListBookmarks returns the ids of stories the user has saved.
func (s *EngagementService) ListBookmarks(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := s.reactionRepo.ListBookmarkedStoryIDs(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// Counts returns reaction aggregates for a batch of stories. Stories without
// rows resolve to zero counts.
func (s *EngagementService) Counts(ctx context.Context, storyIDs []uint, viewerID uint) (map[uint]models.ReactionCounts, error) {
	counts, err := s.reactionRepo.CountsFor(ctx, storyIDs, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return counts, nil
}
