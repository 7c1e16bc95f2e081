package service

import (
	"context"
	"errors"
	"testing"

	"vtelltales/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryService_ReadVisibility(t *testing.T) {
	// The stub story is owned by user 1.
	newSvc := func(status models.StoryStatus) *StoryService {
		storyRepo := noopStoryRepo()
		storyRepo.getByIDFn = func(_ context.Context, id uint) (*models.Story, error) {
			return &models.Story{ID: id, UserID: 1, Title: "t", Status: status}, nil
		}
		return NewStoryService(storyRepo, noopFeedRepo(), noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
	}

	t.Run("Published stories are public", func(t *testing.T) {
		_, err := newSvc(models.StoryStatusPublished).Get(context.Background(), 42, 0, false)
		require.NoError(t, err)
	})

	t.Run("Strangers get not-found for a draft", func(t *testing.T) {
		_, err := newSvc(models.StoryStatusDraft).Get(context.Background(), 42, 7, false)
		requireAppCode(t, err, "NOT_FOUND")
	})

	t.Run("Held stories are hidden from everyone but owner and admins", func(t *testing.T) {
		svc := newSvc(models.StoryStatusHeld)
		_, err := svc.Get(context.Background(), 42, 0, false)
		requireAppCode(t, err, "NOT_FOUND")

		_, err = svc.Get(context.Background(), 42, 1, false)
		require.NoError(t, err)

		_, err = svc.Get(context.Background(), 42, 7, true)
		require.NoError(t, err)
	})

	t.Run("Pages follow the story's visibility", func(t *testing.T) {
		_, err := newSvc(models.StoryStatusDraft).GetPages(context.Background(), 42, 7, false)
		requireAppCode(t, err, "NOT_FOUND")
	})

	t.Run("Summary follows the story's visibility", func(t *testing.T) {
		feedRepo := noopFeedRepo()
		feedRepo.summaryByIDFn = func(_ context.Context, storyID, _ uint) (*models.StorySummary, error) {
			return &models.StorySummary{StoryID: storyID, AuthorID: 1, Status: models.StoryStatusDraft}, nil
		}
		svc := NewStoryService(noopStoryRepo(), feedRepo, noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))

		_, err := svc.Summary(context.Background(), 42, 7, false)
		requireAppCode(t, err, "NOT_FOUND")

		_, err = svc.Summary(context.Background(), 42, 1, false)
		require.NoError(t, err)
	})

	t.Run("Author listings hide drafts from strangers", func(t *testing.T) {
		storyRepo := noopStoryRepo()
		var gotPublishedOnly bool
		storyRepo.getByUserIDFn = func(_ context.Context, _ uint, publishedOnly bool, _, _ int) ([]*models.Story, error) {
			gotPublishedOnly = publishedOnly
			return nil, nil
		}
		svc := NewStoryService(storyRepo, noopFeedRepo(), noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))

		_, err := svc.ListByAuthor(context.Background(), 1, 7, false, 20, 0)
		require.NoError(t, err)
		assert.True(t, gotPublishedOnly)

		_, err = svc.ListByAuthor(context.Background(), 1, 1, false, 20, 0)
		require.NoError(t, err)
		assert.False(t, gotPublishedOnly, "authors see their own drafts")
	})
}

func TestStoryService_Create(t *testing.T) {
	t.Run("New stories start as drafts", func(t *testing.T) {
		storyRepo := noopStoryRepo()
		var created *models.Story
		storyRepo.createFn = func(_ context.Context, story *models.Story) error {
			story.ID = 42
			created = story
			return nil
		}

		svc := NewStoryService(storyRepo, noopFeedRepo(), noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		_, err := svc.Create(context.Background(), &models.Story{UserID: 1, Title: "The Lighthouse", Status: models.StoryStatusPublished})
		require.NoError(t, err)
		assert.Equal(t, models.StoryStatusDraft, created.Status)
	})

	t.Run("Missing title is rejected", func(t *testing.T) {
		svc := NewStoryService(noopStoryRepo(), noopFeedRepo(), noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		_, err := svc.Create(context.Background(), &models.Story{UserID: 1})
		requireAppCode(t, err, "VALIDATION_ERROR")
	})
}

func TestStoryService_Publish(t *testing.T) {
	t.Run("First publish fans out to followers", func(t *testing.T) {
		followRepo := noopFollowRepo()
		followRepo.followerIDsFn = func(context.Context, uint) ([]uint, error) {
			return []uint{7, 8}, nil
		}
		var sent []models.Notification
		notifRepo := noopNotifRepo()
		notifRepo.createBatchFn = func(_ context.Context, batch []models.Notification) (int64, error) {
			sent = append(sent, batch...)
			return int64(len(batch)), nil
		}

		svc := NewStoryService(noopStoryRepo(), noopFeedRepo(), noopMediaStore(), NewNotificationService(notifRepo, followRepo))
		_, err := svc.Publish(context.Background(), 42, 1)
		require.NoError(t, err)
		assert.Len(t, sent, 3) // two followers plus the author's receipt
	})

	t.Run("Republish does not fan out again", func(t *testing.T) {
		storyRepo := noopStoryRepo()
		storyRepo.getByIDFn = func(_ context.Context, id uint) (*models.Story, error) {
			return &models.Story{ID: id, UserID: 1, Title: "t", Status: models.StoryStatusPublished}, nil
		}

		var sent []models.Notification
		svc := NewStoryService(storyRepo, noopFeedRepo(), noopMediaStore(), notifierOver(&sent))
		_, err := svc.Publish(context.Background(), 42, 1)
		require.NoError(t, err)
		assert.Empty(t, sent)
	})

	t.Run("Held stories cannot be published", func(t *testing.T) {
		storyRepo := noopStoryRepo()
		storyRepo.getByIDFn = func(_ context.Context, id uint) (*models.Story, error) {
			return &models.Story{ID: id, UserID: 1, Title: "t", Status: models.StoryStatusHeld}, nil
		}

		svc := NewStoryService(storyRepo, noopFeedRepo(), noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		_, err := svc.Publish(context.Background(), 42, 1)
		requireAppCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("Only the owner may publish", func(t *testing.T) {
		svc := NewStoryService(noopStoryRepo(), noopFeedRepo(), noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		_, err := svc.Publish(context.Background(), 42, 99)
		requireAppCode(t, err, "UNAUTHORIZED")
	})

	t.Run("Publishing survives a failed fan-out", func(t *testing.T) {
		notifRepo := noopNotifRepo()
		notifRepo.createBatchFn = func(context.Context, []models.Notification) (int64, error) {
			return 0, errors.New("connection reset")
		}

		svc := NewStoryService(noopStoryRepo(), noopFeedRepo(), noopMediaStore(), NewNotificationService(notifRepo, noopFollowRepo()))
		_, err := svc.Publish(context.Background(), 42, 1)
		require.NoError(t, err)
	})
}

func TestStoryService_Delete(t *testing.T) {
	t.Run("Removes cover and page media", func(t *testing.T) {
		storyRepo := noopStoryRepo()
		storyRepo.getByIDFn = func(_ context.Context, id uint) (*models.Story, error) {
			return &models.Story{ID: id, UserID: 1, Title: "t", CoverImage: "cover.webp"}, nil
		}
		storyRepo.getPagesFn = func(context.Context, uint) ([]*models.StoryPage, error) {
			return []*models.StoryPage{
				{StoryID: 42, PageNumber: 1, Media: "p1.webp"},
				{StoryID: 42, PageNumber: 2},
			}, nil
		}

		var removed []string
		media := noopMediaStore()
		media.removeFn = func(ref string) error {
			removed = append(removed, ref)
			return nil
		}

		svc := NewStoryService(storyRepo, noopFeedRepo(), media, NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		require.NoError(t, svc.Delete(context.Background(), 42, 1))
		assert.Equal(t, []string{"cover.webp", "p1.webp"}, removed)
	})

	t.Run("Proceeds when media removal fails", func(t *testing.T) {
		storyRepo := noopStoryRepo()
		storyRepo.getByIDFn = func(_ context.Context, id uint) (*models.Story, error) {
			return &models.Story{ID: id, UserID: 1, Title: "t", CoverImage: "cover.webp"}, nil
		}
		cascaded := false
		storyRepo.deleteCascadeFn = func(context.Context, uint) error {
			cascaded = true
			return nil
		}

		media := noopMediaStore()
		media.removeFn = func(string) error { return errors.New("permission denied") }

		svc := NewStoryService(storyRepo, noopFeedRepo(), media, NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		require.NoError(t, svc.Delete(context.Background(), 42, 1))
		assert.True(t, cascaded)
	})

	t.Run("Row deletion failure decides the outcome", func(t *testing.T) {
		storyRepo := noopStoryRepo()
		storyRepo.deleteCascadeFn = func(context.Context, uint) error {
			return errors.New("deadlock detected")
		}

		svc := NewStoryService(storyRepo, noopFeedRepo(), noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		requireAppCode(t, svc.Delete(context.Background(), 42, 1), "INTERNAL_ERROR")
	})
}

func TestStoryService_Update(t *testing.T) {
	storyRepo := noopStoryRepo()
	storyRepo.getByIDFn = func(_ context.Context, id uint) (*models.Story, error) {
		return &models.Story{ID: id, UserID: 1, Title: "old", Description: "old desc"}, nil
	}
	var saved *models.Story
	storyRepo.updateFn = func(_ context.Context, story *models.Story) error {
		saved = story
		return nil
	}

	svc := NewStoryService(storyRepo, noopFeedRepo(), noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
	_, err := svc.Update(context.Background(), 42, 1, &models.Story{Title: "new", Description: ""})
	require.NoError(t, err)
	assert.Equal(t, "new", saved.Title)
	// Description is always overwritten, so blanking it out is possible.
	assert.Equal(t, "", saved.Description)
}

func TestStoryService_DeletePage(t *testing.T) {
	t.Run("Removes the page media before the row", func(t *testing.T) {
		storyRepo := noopStoryRepo()
		storyRepo.getPageFn = func(_ context.Context, storyID uint, pageNumber int) (*models.StoryPage, error) {
			return &models.StoryPage{StoryID: storyID, PageNumber: pageNumber, Media: "p2.webp"}, nil
		}

		var removed []string
		media := noopMediaStore()
		media.removeFn = func(ref string) error {
			removed = append(removed, ref)
			return nil
		}

		svc := NewStoryService(storyRepo, noopFeedRepo(), media, NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		require.NoError(t, svc.DeletePage(context.Background(), 42, 1, 2))
		assert.Equal(t, []string{"p2.webp"}, removed)
	})

	t.Run("Only the owner may delete pages", func(t *testing.T) {
		svc := NewStoryService(noopStoryRepo(), noopFeedRepo(), noopMediaStore(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		requireAppCode(t, svc.DeletePage(context.Background(), 42, 99, 2), "UNAUTHORIZED")
	})
}
