package repository

import (
	"context"

	"vtelltales/internal/cache"
	"vtelltales/internal/models"

	"gorm.io/gorm"
)

// StoryRepository defines the interface for story and story-page data operations
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uint) (*models.Story, error)
	GetByUserID(ctx context.Context, userID uint, publishedOnly bool, limit, offset int) ([]*models.Story, error)
	Update(ctx context.Context, story *models.Story) error
	SetStatus(ctx context.Context, storyID uint, status string) error
	DeleteCascade(ctx context.Context, storyID uint) error

	AddPage(ctx context.Context, page *models.StoryPage) error
	GetPage(ctx context.Context, storyID uint, pageNumber int) (*models.StoryPage, error)
	GetPages(ctx context.Context, storyID uint) ([]*models.StoryPage, error)
	UpdatePage(ctx context.Context, page *models.StoryPage) error
	DeletePage(ctx context.Context, storyID uint, pageNumber int) error

	ListTypes(ctx context.Context) ([]models.StoryType, error)
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *storyRepository) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	var story models.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("StoryType").
		First(&story, id).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) GetByUserID(ctx context.Context, userID uint, publishedOnly bool, limit, offset int) ([]*models.Story, error) {
	var stories []*models.Story
	q := r.db.WithContext(ctx).
		Preload("StoryType").
		Where("user_id = ?", userID).
		Order("id DESC")
	if publishedOnly {
		q = q.Where("status = ?", models.StoryStatusPublished)
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&stories).Error
	return stories, err
}

func (r *storyRepository) Update(ctx context.Context, story *models.Story) error {
	if err := r.db.WithContext(ctx).Save(story).Error; err != nil {
		return err
	}
	cache.InvalidateStory(ctx, story.ID)
	return nil
}

func (r *storyRepository) SetStatus(ctx context.Context, storyID uint, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ?", storyID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateStory(ctx, storyID)
	return nil
}

// DeleteCascade removes the story row together with its pages and every
// dependent reaction, moderation and notification row. Media cleanup is the
// caller's concern and is handled best-effort outside this transaction.
func (r *storyRepository) DeleteCascade(ctx context.Context, storyID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.StoryPage{}, &models.Like{}, &models.View{},
			&models.Comment{}, &models.Bookmark{},
			&models.ReportBlockStory{}, &models.Notification{},
		} {
			if err := tx.Where("story_id = ?", storyID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Story{}, storyID).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateStory(ctx, storyID)
	return nil
}

func (r *storyRepository) AddPage(ctx context.Context, page *models.StoryPage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if page.PageNumber == 0 {
			// Append to the end when no explicit position is given.
			var maxPage int
			if err := tx.Model(&models.StoryPage{}).
				Where("story_id = ?", page.StoryID).
				Select("COALESCE(MAX(page_number), 0)").
				Scan(&maxPage).Error; err != nil {
				return err
			}
			page.PageNumber = maxPage + 1
		}
		return tx.Create(page).Error
	})
}

func (r *storyRepository) GetPage(ctx context.Context, storyID uint, pageNumber int) (*models.StoryPage, error) {
	var page models.StoryPage
	err := r.db.WithContext(ctx).
		Where("story_id = ? AND page_number = ?", storyID, pageNumber).
		First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *storyRepository) GetPages(ctx context.Context, storyID uint) ([]*models.StoryPage, error) {
	var pages []*models.StoryPage
	err := r.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("page_number ASC").
		Find(&pages).Error
	return pages, err
}

func (r *storyRepository) UpdatePage(ctx context.Context, page *models.StoryPage) error {
	return r.db.WithContext(ctx).Save(page).Error
}

// DeletePage removes a page and renumbers the remaining pages so numbering
// stays contiguous starting at 1.
func (r *storyRepository) DeletePage(ctx context.Context, storyID uint, pageNumber int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("story_id = ? AND page_number = ?", storyID, pageNumber).
			Delete(&models.StoryPage{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.StoryPage{}).
			Where("story_id = ? AND page_number > ?", storyID, pageNumber).
			Update("page_number", gorm.Expr("page_number - 1")).Error
	})
}

func (r *storyRepository) ListTypes(ctx context.Context) ([]models.StoryType, error) {
	return cache.Aside(ctx, cache.StoryTypesKey, "story_types", cache.StoryTypesTTL, func() ([]models.StoryType, error) {
		var types []models.StoryType
		err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
		return types, err
	})
}
