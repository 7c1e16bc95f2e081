package service

import (
	"context"

	"vtelltales/internal/cache"
	"vtelltales/internal/models"
	"vtelltales/internal/repository"
)

// FeedService composes the four ranked feeds. Every feed applies the viewer's
// moderation exclusions before pagination, so blocked content neither appears
// nor shortens a page.
type FeedService struct {
	feedRepo repository.FeedRepository
	modRepo  repository.ModerationRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(feedRepo repository.FeedRepository, modRepo repository.ModerationRepository) *FeedService {
	return &FeedService{
		feedRepo: feedRepo,
		modRepo:  modRepo,
	}
}

// GetGlobalFeed returns all published stories except the viewer's own and
// anything they have hard-blocked, newest story first.
func (s *FeedService) GetGlobalFeed(ctx context.Context, viewerID uint, offset, limit int) ([]models.StorySummary, error) {
	if viewerID == 0 {
		// Anonymous pages share one exclusion-free result, so they are safe
		// to cache briefly.
		return cache.Aside(ctx, cache.PublicFeedKey("global", offset, limit), "feed", cache.PublicFeedTTL,
			func() ([]models.StorySummary, error) {
				return s.feedRepo.Global(ctx, 0, models.ExclusionSet{}, limit, offset)
			})
	}

	excl, err := s.modRepo.ExclusionSet(ctx, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	rows, err := s.feedRepo.Global(ctx, viewerID, excl, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

// GetFanOfFeed returns stories from authors the viewer follows.
func (s *FeedService) GetFanOfFeed(ctx context.Context, viewerID uint, offset, limit int) ([]models.StorySummary, error) {
	excl, err := s.modRepo.ExclusionSet(ctx, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	rows, err := s.feedRepo.FanOf(ctx, viewerID, excl, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

// GetBecameFanFeed returns stories from users who follow the viewer.
func (s *FeedService) GetBecameFanFeed(ctx context.Context, viewerID uint, offset, limit int) ([]models.StorySummary, error) {
	excl, err := s.modRepo.ExclusionSet(ctx, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	rows, err := s.feedRepo.BecameFan(ctx, viewerID, excl, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

// GetTopStories returns the fixed-size trending feed, ranked by views, then
// likes, then recency.
func (s *FeedService) GetTopStories(ctx context.Context, viewerID uint) ([]models.StorySummary, error) {
	if viewerID == 0 {
		return cache.Aside(ctx, cache.PublicFeedKey("top", 0, repository.TopStoriesLimit), "feed", cache.PublicFeedTTL,
			func() ([]models.StorySummary, error) {
				return s.feedRepo.Top(ctx, 0, models.ExclusionSet{})
			})
	}

	excl, err := s.modRepo.ExclusionSet(ctx, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	rows, err := s.feedRepo.Top(ctx, viewerID, excl)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}
