package service

import (
	"context"
	"errors"

	"vtelltales/internal/models"
	"vtelltales/internal/repository"

	"gorm.io/gorm"
)

// FollowService maintains the follow graph and its notifications.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   *NotificationService
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, notifier *NotificationService) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Follow creates the edge if absent. A duplicate follow is a success with no
// new edge and no repeated notification.
func (s *FollowService) Follow(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", targetID)
		}
		return models.NewInternalError(err)
	}

	created, err := s.followRepo.Follow(ctx, userID, targetID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if created {
		s.notifier.Followed(ctx, userID, targetID)
	}
	return nil
}

// Unfollow removes the edge. A missing edge is a success with zero rows
// affected and no notification.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uint) error {
	affected, err := s.followRepo.Unfollow(ctx, userID, targetID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if affected > 0 {
		s.notifier.Unfollowed(ctx, userID, targetID)
	}
	return nil
}

// IsFollowing reports whether userID follows targetID.
func (s *FollowService) IsFollowing(ctx context.Context, userID, targetID uint) (bool, error) {
	following, err := s.followRepo.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return following, nil
}

// Following lists the users userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.UserCard, error) {
	users, err := s.followRepo.Following(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return toCards(users), nil
}

// Followers lists the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.UserCard, error) {
	users, err := s.followRepo.Followers(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return toCards(users), nil
}

// Counts returns follower and following totals for a user.
func (s *FollowService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	followers, following, err = s.followRepo.Counts(ctx, userID)
	if err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return followers, following, nil
}

func toCards(users []*models.User) []models.UserCard {
	cards := make([]models.UserCard, 0, len(users))
	for _, u := range users {
		cards = append(cards, u.Card())
	}
	return cards
}
