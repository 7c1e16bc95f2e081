package repository

import (
	"context"

	"vtelltales/internal/cache"
	"vtelltales/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository records likes, views, comments and bookmarks, and
// aggregates per-story counts.
type ReactionRepository interface {
	// ToggleLike flips the viewer's like on a story atomically. Returns the
	// resulting like state.
	ToggleLike(ctx context.Context, storyID, userID uint) (bool, error)
	IsLiked(ctx context.Context, storyID, userID uint) (bool, error)
	AddView(ctx context.Context, storyID, viewerID uint) error

	CreateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, commentID uint) error
	ListComments(ctx context.Context, storyID uint, limit, offset int) ([]*models.Comment, error)

	ToggleBookmark(ctx context.Context, storyID, userID uint) (bool, error)
	ListBookmarkedStoryIDs(ctx context.Context, userID uint) ([]uint, error)

	// CountsFor returns aggregates for a batch of stories. Stories with no
	// related rows yield zero counts, never an error.
	CountsFor(ctx context.Context, storyIDs []uint, viewerID uint) (map[uint]models.ReactionCounts, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// ToggleLike is a conditional insert-or-delete: the insert races safely via
// ON CONFLICT DO NOTHING, and when it affects no rows the like already
// existed and is deleted instead.
func (r *reactionRepository) ToggleLike(ctx context.Context, storyID, userID uint) (bool, error) {
	like := models.Like{StoryID: storyID, UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidateStory(ctx, storyID)
		return true, nil
	}

	del := r.db.WithContext(ctx).
		Where("story_id = ? AND user_id = ?", storyID, userID).
		Delete(&models.Like{})
	if del.Error != nil {
		return false, del.Error
	}
	cache.InvalidateStory(ctx, storyID)
	// A concurrent toggle may have deleted it first; either way the like is
	// gone now.
	return false, nil
}

func (r *reactionRepository) IsLiked(ctx context.Context, storyID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("story_id = ? AND user_id = ?", storyID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddView appends a view event. Repeat views are counted, so there is no
// conflict handling here.
func (r *reactionRepository) AddView(ctx context.Context, storyID, viewerID uint) error {
	view := models.View{StoryID: storyID, ViewerID: viewerID}
	return r.db.WithContext(ctx).Create(&view).Error
}

func (r *reactionRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	cache.InvalidateStory(ctx, comment.StoryID)
	return nil
}

func (r *reactionRepository) DeleteComment(ctx context.Context, commentID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, commentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reactionRepository) ListComments(ctx context.Context, storyID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("story_id = ?", storyID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *reactionRepository) ToggleBookmark(ctx context.Context, storyID, userID uint) (bool, error) {
	bookmark := models.Bookmark{StoryID: storyID, UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&bookmark)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	del := r.db.WithContext(ctx).
		Where("story_id = ? AND user_id = ?", storyID, userID).
		Delete(&models.Bookmark{})
	return false, del.Error
}

func (r *reactionRepository) ListBookmarkedStoryIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Bookmark{}).
		Where("user_id = ?", userID).
		Order("id DESC").
		Pluck("story_id", &ids).Error
	return ids, err
}

func (r *reactionRepository) CountsFor(ctx context.Context, storyIDs []uint, viewerID uint) (map[uint]models.ReactionCounts, error) {
	out := make(map[uint]models.ReactionCounts, len(storyIDs))
	if len(storyIDs) == 0 {
		return out, nil
	}

	selectQuery := "stories.id AS story_id, " +
		"(SELECT COUNT(*) FROM story_pages WHERE story_pages.story_id = stories.id) AS page_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.story_id = stories.id) AS like_count, " +
		"(SELECT COUNT(*) FROM views WHERE views.story_id = stories.id) AS view_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.story_id = stories.id) AS comment_count"

	q := r.db.WithContext(ctx).Model(&models.Story{})
	if viewerID != 0 {
		q = q.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.story_id = stories.id AND likes.user_id = ?) AS viewer_has_liked",
			viewerID)
	} else {
		q = q.Select(selectQuery + ", (0 = 1) AS viewer_has_liked")
	}

	var rows []models.ReactionCounts
	if err := q.Where("stories.id IN ?", storyIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.StoryID] = row
	}
	// Unknown story ids simply have no entry; callers treat that as zeros.
	return out, nil
}
