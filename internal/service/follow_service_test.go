package service

import (
	"context"
	"testing"

	"vtelltales/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// notifierOver builds a NotificationService whose inserts land in *sink.
func notifierOver(sink *[]models.Notification) *NotificationService {
	notifRepo := noopNotifRepo()
	notifRepo.createBatchFn = func(_ context.Context, batch []models.Notification) (int64, error) {
		*sink = append(*sink, batch...)
		return int64(len(batch)), nil
	}
	return NewNotificationService(notifRepo, noopFollowRepo())
}

func TestFollowService_Follow(t *testing.T) {
	t.Run("New edge notifies the followee once", func(t *testing.T) {
		var sent []models.Notification
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), notifierOver(&sent))

		require.NoError(t, svc.Follow(context.Background(), 1, 2))

		require.Len(t, sent, 1)
		assert.Equal(t, uint(1), sent[0].ActorID)
		assert.Equal(t, uint(2), sent[0].RecipientID)
		assert.Equal(t, models.NotifyTypeFollow, sent[0].Type)
	})

	t.Run("Duplicate follow succeeds without a second notification", func(t *testing.T) {
		followRepo := noopFollowRepo()
		followRepo.followFn = func(context.Context, uint, uint) (bool, error) { return false, nil }

		var sent []models.Notification
		svc := NewFollowService(followRepo, noopUserRepo(), notifierOver(&sent))

		require.NoError(t, svc.Follow(context.Background(), 1, 2))
		assert.Empty(t, sent)
	})

	t.Run("Self follow is rejected", func(t *testing.T) {
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		requireAppCode(t, svc.Follow(context.Background(), 1, 1), "VALIDATION_ERROR")
	})

	t.Run("Unknown target is rejected", func(t *testing.T) {
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(context.Context, uint) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewFollowService(noopFollowRepo(), userRepo, NewNotificationService(noopNotifRepo(), noopFollowRepo()))
		requireAppCode(t, svc.Follow(context.Background(), 1, 99), "NOT_FOUND")
	})
}

func TestFollowService_Unfollow(t *testing.T) {
	t.Run("Removed edge notifies the followee", func(t *testing.T) {
		var sent []models.Notification
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), notifierOver(&sent))

		require.NoError(t, svc.Unfollow(context.Background(), 1, 2))

		require.Len(t, sent, 1)
		assert.Equal(t, models.NotifyTypeUnfollow, sent[0].Type)
	})

	t.Run("Absent edge succeeds silently", func(t *testing.T) {
		followRepo := noopFollowRepo()
		followRepo.unfollowFn = func(context.Context, uint, uint) (int64, error) { return 0, nil }

		var sent []models.Notification
		svc := NewFollowService(followRepo, noopUserRepo(), notifierOver(&sent))

		require.NoError(t, svc.Unfollow(context.Background(), 1, 2))
		assert.Empty(t, sent)
	})
}

func TestFollowService_Followers(t *testing.T) {
	followRepo := noopFollowRepo()
	followRepo.followersFn = func(context.Context, uint, int, int) ([]*models.User, error) {
		return []*models.User{
			{ID: 7, Username: "ada", Avatar: "a.webp"},
			{ID: 8, Username: "bram"},
		}, nil
	}

	svc := NewFollowService(followRepo, noopUserRepo(), NewNotificationService(noopNotifRepo(), noopFollowRepo()))
	cards, err := svc.Followers(context.Background(), 5, 20, 0)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, uint(7), cards[0].ID)
	assert.Equal(t, "ada", cards[0].Username)
}
