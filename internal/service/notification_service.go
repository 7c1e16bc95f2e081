// Package service implements the business logic between the HTTP handlers
// and the repositories.
package service

import (
	"context"
	"log/slog"

	"vtelltales/internal/middleware"
	"vtelltales/internal/models"
	"vtelltales/internal/observability"
	"vtelltales/internal/repository"
)

// NotificationService fans notifications out to recipient sets and serves a
// recipient's list. Fan-out is best-effort: a failed insert is logged and
// counted but never fails the triggering action.
type NotificationService struct {
	notifRepo  repository.NotificationRepository
	followRepo repository.FollowRepository
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(notifRepo repository.NotificationRepository, followRepo repository.FollowRepository) *NotificationService {
	return &NotificationService{
		notifRepo:  notifRepo,
		followRepo: followRepo,
	}
}

// StoryPublished notifies every current follower of the author, plus the
// author themself as a publish receipt, in one batched insert.
func (s *NotificationService) StoryPublished(ctx context.Context, authorID, storyID uint) {
	followerIDs, err := s.followRepo.FollowerIDs(ctx, authorID)
	if err != nil {
		s.logDropped(ctx, "story_published", err)
		return
	}

	batch := make([]models.Notification, 0, len(followerIDs)+1)
	for _, recipientID := range followerIDs {
		batch = append(batch, models.Notification{
			ActorID:     authorID,
			RecipientID: recipientID,
			Type:        models.NotifyTypeStoryPublished,
			StoryID:     &storyID,
		})
	}
	batch = append(batch, models.Notification{
		ActorID:     authorID,
		RecipientID: authorID,
		Type:        models.NotifyTypeStoryPublished,
		StoryID:     &storyID,
	})

	s.deliver(ctx, "story_published", batch)
}

// StoryLiked notifies the story's author. Authors liking their own story
// still get the notification; that is intentional.
func (s *NotificationService) StoryLiked(ctx context.Context, likerID, authorID, storyID uint) {
	s.deliver(ctx, "story_liked", []models.Notification{{
		ActorID:     likerID,
		RecipientID: authorID,
		Type:        models.NotifyTypeStoryLiked,
		StoryID:     &storyID,
	}})
}

// Followed notifies the followee of a new follower.
func (s *NotificationService) Followed(ctx context.Context, followerID, followeeID uint) {
	s.deliver(ctx, "follow", []models.Notification{{
		ActorID:     followerID,
		RecipientID: followeeID,
		Type:        models.NotifyTypeFollow,
	}})
}

// Unfollowed notifies the followee that a follower left.
func (s *NotificationService) Unfollowed(ctx context.Context, followerID, followeeID uint) {
	s.deliver(ctx, "unfollow", []models.Notification{{
		ActorID:     followerID,
		RecipientID: followeeID,
		Type:        models.NotifyTypeUnfollow,
	}})
}

// ProfileUpdated records a self-notification for the user's own activity log.
func (s *NotificationService) ProfileUpdated(ctx context.Context, userID uint) {
	s.deliver(ctx, "profile_updated", []models.Notification{{
		ActorID:     userID,
		RecipientID: userID,
		Type:        models.NotifyTypeProfileUpdated,
	}})
}

func (s *NotificationService) deliver(ctx context.Context, kind string, batch []models.Notification) {
	inserted, err := s.notifRepo.CreateBatch(ctx, batch)
	if err != nil {
		s.logDropped(ctx, kind, err)
		if inserted > 0 {
			// A partial fan-out stands; only the shortfall is reported.
			observability.NotificationFanout.WithLabelValues(kind, "partial").Inc()
		} else {
			observability.NotificationFanout.WithLabelValues(kind, "failed").Inc()
		}
		return
	}
	observability.NotificationFanout.WithLabelValues(kind, "ok").Inc()
}

func (s *NotificationService) logDropped(ctx context.Context, kind string, err error) {
	middleware.Logger.WarnContext(ctx, "notification fan-out failed",
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
}

// List returns the user's notifications newest first and marks every unread
// one as read within the same request.
func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	notifications, err := s.notifRepo.ListAndMarkRead(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifRepo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
