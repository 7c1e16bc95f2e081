package service

import (
	"context"
	"errors"
	"log/slog"

	"vtelltales/internal/middleware"
	"vtelltales/internal/models"
	"vtelltales/internal/repository"
	"vtelltales/internal/storage"

	"gorm.io/gorm"
)

// StoryService owns the story lifecycle: authoring, publishing (which
// triggers follower fan-out), page management and cascade deletion.
type StoryService struct {
	storyRepo repository.StoryRepository
	feedRepo  repository.FeedRepository
	media     storage.MediaStore
	notifier  *NotificationService
}

// NewStoryService returns a new StoryService.
func NewStoryService(storyRepo repository.StoryRepository, feedRepo repository.FeedRepository, media storage.MediaStore, notifier *NotificationService) *StoryService {
	return &StoryService{
		storyRepo: storyRepo,
		feedRepo:  feedRepo,
		media:     media,
		notifier:  notifier,
	}
}

// Create stores a new draft story for the author.
func (s *StoryService) Create(ctx context.Context, story *models.Story) (*models.Story, error) {
	if story.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	story.Status = models.StoryStatusDraft
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.get(ctx, story.ID)
}

// Get returns one story with its author and type resolved. Drafts and held
// stories exist only for their author and for admins; everyone else gets a
// not-found, never a hint that the story exists.
func (s *StoryService) Get(ctx context.Context, storyID, viewerID uint, admin bool) (*models.Story, error) {
	story, err := s.get(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if !storyReadable(story.Status, story.UserID, viewerID, admin) {
		return nil, models.NewNotFoundError("Story", storyID)
	}
	return story, nil
}

// storyReadable reports whether a viewer may read a story. Published stories
// are public; drafts and held stories are owner- and admin-only.
func storyReadable(status models.StoryStatus, authorID, viewerID uint, admin bool) bool {
	return status == models.StoryStatusPublished || authorID == viewerID || admin
}

func (s *StoryService) get(ctx context.Context, storyID uint) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Story", storyID)
		}
		return nil, models.NewInternalError(err)
	}
	return story, nil
}

// Summary returns the annotated feed row for one story, subject to the same
// visibility rule as Get.
func (s *StoryService) Summary(ctx context.Context, storyID, viewerID uint, admin bool) (*models.StorySummary, error) {
	summary, err := s.feedRepo.SummaryByID(ctx, storyID, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Story", storyID)
		}
		return nil, models.NewInternalError(err)
	}
	if !storyReadable(summary.Status, summary.AuthorID, viewerID, admin) {
		return nil, models.NewNotFoundError("Story", storyID)
	}
	return summary, nil
}

// ListByAuthor returns an author's stories, newest first. Authors (and
// admins) see their drafts and held stories; everyone else only published.
func (s *StoryService) ListByAuthor(ctx context.Context, authorID, viewerID uint, admin bool, limit, offset int) ([]*models.Story, error) {
	publishedOnly := authorID != viewerID && !admin
	stories, err := s.storyRepo.GetByUserID(ctx, authorID, publishedOnly, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return stories, nil
}

// Update edits a story's metadata. Only the owner may edit.
func (s *StoryService) Update(ctx context.Context, storyID, userID uint, updates *models.Story) (*models.Story, error) {
	story, err := s.requireOwner(ctx, storyID, userID)
	if err != nil {
		return nil, err
	}

	if updates.Title != "" {
		story.Title = updates.Title
	}
	story.Description = updates.Description
	if updates.CoverImage != "" {
		story.CoverImage = updates.CoverImage
	}
	if updates.StoryTypeID != nil {
		story.StoryTypeID = updates.StoryTypeID
	}

	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.get(ctx, storyID)
}

// Publish flips a story to published and fans out notifications to the
// author's followers. The fan-out is best-effort; publishing succeeds even
// if some notifications are dropped.
func (s *StoryService) Publish(ctx context.Context, storyID, userID uint) (*models.Story, error) {
	story, err := s.requireOwner(ctx, storyID, userID)
	if err != nil {
		return nil, err
	}
	if story.Status == models.StoryStatusHeld {
		return nil, models.NewValidationError("Story is held by moderation and cannot be published")
	}

	alreadyPublished := story.Status == models.StoryStatusPublished
	if err := s.storyRepo.SetStatus(ctx, storyID, string(models.StoryStatusPublished)); err != nil {
		return nil, models.NewInternalError(err)
	}

	if !alreadyPublished {
		s.notifier.StoryPublished(ctx, userID, storyID)
	}
	return s.get(ctx, storyID)
}

// Delete removes a story and everything hanging off it. Media cleanup is
// best-effort: a failed file removal is logged, the row deletion decides the
// outcome reported to the caller.
func (s *StoryService) Delete(ctx context.Context, storyID, ownerID uint) error {
	story, err := s.requireOwner(ctx, storyID, ownerID)
	if err != nil {
		return err
	}

	refs := make([]string, 0, 4)
	if story.CoverImage != "" {
		refs = append(refs, story.CoverImage)
	}
	pages, err := s.storyRepo.GetPages(ctx, storyID)
	if err != nil {
		return models.NewInternalError(err)
	}
	for _, p := range pages {
		if p.Media != "" {
			refs = append(refs, p.Media)
		}
	}

	s.removeMedia(ctx, refs)

	if err := s.storyRepo.DeleteCascade(ctx, storyID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *StoryService) removeMedia(ctx context.Context, refs []string) {
	removeMediaRefs(ctx, s.media, refs)
}

// removeMediaRefs deletes media files best-effort: failures are logged and
// never surface to the caller.
func removeMediaRefs(ctx context.Context, media storage.MediaStore, refs []string) {
	if media == nil {
		return
	}
	for _, ref := range refs {
		if err := media.Remove(ref); err != nil {
			middleware.Logger.WarnContext(ctx, "media cleanup failed",
				slog.String("ref", ref),
				slog.String("error", err.Error()),
			)
		}
	}
}

// AddPage appends or inserts a page for the owner.
func (s *StoryService) AddPage(ctx context.Context, storyID, userID uint, page *models.StoryPage) (*models.StoryPage, error) {
	if _, err := s.requireOwner(ctx, storyID, userID); err != nil {
		return nil, err
	}
	page.StoryID = storyID
	if err := s.storyRepo.AddPage(ctx, page); err != nil {
		return nil, models.NewInternalError(err)
	}
	return page, nil
}

// GetPages returns a story's pages in order. The story itself must be
// readable by the viewer; an unknown or hidden story is a not-found.
func (s *StoryService) GetPages(ctx context.Context, storyID, viewerID uint, admin bool) ([]*models.StoryPage, error) {
	if _, err := s.Get(ctx, storyID, viewerID, admin); err != nil {
		return nil, err
	}
	pages, err := s.storyRepo.GetPages(ctx, storyID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return pages, nil
}

// UpdatePage edits one page's content for the owner.
func (s *StoryService) UpdatePage(ctx context.Context, storyID, userID uint, pageNumber int, content, contentType, format string) (*models.StoryPage, error) {
	if _, err := s.requireOwner(ctx, storyID, userID); err != nil {
		return nil, err
	}
	page, err := s.storyRepo.GetPage(ctx, storyID, pageNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Page", uint(pageNumber))
		}
		return nil, models.NewInternalError(err)
	}
	page.Content = content
	if contentType != "" {
		page.ContentType = contentType
	}
	if format != "" {
		page.Format = format
	}
	if err := s.storyRepo.UpdatePage(ctx, page); err != nil {
		return nil, models.NewInternalError(err)
	}
	return page, nil
}

// DeletePage removes one page and renumbers the rest contiguously from 1.
func (s *StoryService) DeletePage(ctx context.Context, storyID, userID uint, pageNumber int) error {
	if _, err := s.requireOwner(ctx, storyID, userID); err != nil {
		return err
	}
	if page, err := s.storyRepo.GetPage(ctx, storyID, pageNumber); err == nil && page.Media != "" {
		s.removeMedia(ctx, []string{page.Media})
	}
	if err := s.storyRepo.DeletePage(ctx, storyID, pageNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Page", uint(pageNumber))
		}
		return models.NewInternalError(err)
	}
	return nil
}

// ListTypes returns the story type lookup table.
func (s *StoryService) ListTypes(ctx context.Context) ([]models.StoryType, error) {
	types, err := s.storyRepo.ListTypes(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return types, nil
}

func (s *StoryService) requireOwner(ctx context.Context, storyID, userID uint) (*models.Story, error) {
	story, err := s.get(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.UserID != userID {
		return nil, models.NewUnauthorizedError("You do not own this story")
	}
	return story, nil
}
