package repository

import (
	"context"

	"vtelltales/internal/models"
	"vtelltales/internal/observability"

	"gorm.io/gorm"
)

// TopStoriesLimit is the fixed size of the trending feed, independent of
// client pagination.
const TopStoriesLimit = 20

// FeedRepository composes the ranked story feeds. Every query applies the
// viewer's moderation exclusions in the WHERE clause, before LIMIT/OFFSET,
// so excluded rows never eat into the page size.
type FeedRepository interface {
	Global(ctx context.Context, viewerID uint, excl models.ExclusionSet, limit, offset int) ([]models.StorySummary, error)
	FanOf(ctx context.Context, viewerID uint, excl models.ExclusionSet, limit, offset int) ([]models.StorySummary, error)
	BecameFan(ctx context.Context, viewerID uint, excl models.ExclusionSet, limit, offset int) ([]models.StorySummary, error)
	Top(ctx context.Context, viewerID uint, excl models.ExclusionSet) ([]models.StorySummary, error)
	SummaryByID(ctx context.Context, storyID, viewerID uint) (*models.StorySummary, error)
}

type feedRepository struct {
	db *gorm.DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

// applySummarySelect adds the correlated COUNT subqueries, author join and
// story-type join for a feed row, in a single query. COALESCE on the label
// keeps rows with dangling story types instead of dropping them.
func (r *feedRepository) applySummarySelect(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "stories.id AS story_id, stories.title, stories.description, " +
		"stories.cover_image, stories.status, stories.created_at, " +
		"stories.user_id AS author_id, " +
		"COALESCE(users.username, '') AS author_name, " +
		"COALESCE(story_types.label, '') AS story_type_label, " +
		"(SELECT COUNT(*) FROM story_pages WHERE story_pages.story_id = stories.id) AS page_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.story_id = stories.id) AS like_count, " +
		"(SELECT COUNT(*) FROM views WHERE views.story_id = stories.id) AS view_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.story_id = stories.id) AS comment_count"

	if viewerID != 0 {
		db = db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.story_id = stories.id AND likes.user_id = ?) AS viewer_has_liked",
			viewerID)
	} else {
		db = db.Select(selectQuery + ", (0 = 1) AS viewer_has_liked")
	}

	return db.Model(&models.Story{}).
		Joins("LEFT JOIN users ON users.id = stories.user_id").
		Joins("LEFT JOIN story_types ON story_types.id = stories.story_type_id")
}

// applyVisibility narrows to published stories outside the viewer's
// hard-block exclusions. The chronological feeds additionally drop the
// viewer's own stories; the trending feed keeps them, so ranking is the same
// for every viewer.
func (r *feedRepository) applyVisibility(db *gorm.DB, excl models.ExclusionSet) *gorm.DB {
	db = db.Where("stories.status = ?", models.StoryStatusPublished)
	if len(excl.UserIDs) > 0 {
		db = db.Where("stories.user_id NOT IN ?", excl.UserIDs)
	}
	if len(excl.StoryIDs) > 0 {
		db = db.Where("stories.id NOT IN ?", excl.StoryIDs)
	}
	return db
}

func (r *feedRepository) Global(ctx context.Context, viewerID uint, excl models.ExclusionSet, limit, offset int) ([]models.StorySummary, error) {
	defer observability.TrackFeed("global")()

	var rows []models.StorySummary
	q := r.applySummarySelect(r.db.WithContext(ctx), viewerID)
	q = r.applyVisibility(q, excl)
	if viewerID != 0 {
		q = q.Where("stories.user_id <> ?", viewerID)
	}
	err := q.Order("stories.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

func (r *feedRepository) FanOf(ctx context.Context, viewerID uint, excl models.ExclusionSet, limit, offset int) ([]models.StorySummary, error) {
	defer observability.TrackFeed("fan_of")()

	var rows []models.StorySummary
	q := r.applySummarySelect(r.db.WithContext(ctx), viewerID)
	q = r.applyVisibility(q, excl)
	err := q.Where("stories.user_id IN (SELECT followee_id FROM follow_edges WHERE follower_id = ?)", viewerID).
		Order("stories.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

func (r *feedRepository) BecameFan(ctx context.Context, viewerID uint, excl models.ExclusionSet, limit, offset int) ([]models.StorySummary, error) {
	defer observability.TrackFeed("became_fan")()

	var rows []models.StorySummary
	q := r.applySummarySelect(r.db.WithContext(ctx), viewerID)
	q = r.applyVisibility(q, excl)
	err := q.Where("stories.user_id IN (SELECT follower_id FROM follow_edges WHERE followee_id = ?)", viewerID).
		Order("stories.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// Top returns the trending feed: view count, then like count, then recency.
// The count aliases from the SELECT are referenced directly in ORDER BY.
func (r *feedRepository) Top(ctx context.Context, viewerID uint, excl models.ExclusionSet) ([]models.StorySummary, error) {
	defer observability.TrackFeed("top")()

	var rows []models.StorySummary
	q := r.applySummarySelect(r.db.WithContext(ctx), viewerID)
	q = r.applyVisibility(q, excl)
	err := q.Order("view_count DESC, like_count DESC, stories.created_at DESC, stories.id DESC").
		Limit(TopStoriesLimit).
		Scan(&rows).Error
	return rows, err
}

// SummaryByID returns the annotated summary for one story, regardless of
// status. Used by the story detail surface, not the feeds.
func (r *feedRepository) SummaryByID(ctx context.Context, storyID, viewerID uint) (*models.StorySummary, error) {
	var row models.StorySummary
	q := r.applySummarySelect(r.db.WithContext(ctx), viewerID)
	res := q.Where("stories.id = ?", storyID).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}
