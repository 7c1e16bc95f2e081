package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"vtelltales/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// requireAppCode asserts that err is an *models.AppError carrying the given
// code.
func requireAppCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %v", err)
	require.Equal(t, code, appErr.Code)
}

// Function-field stubs for the repository interfaces. Each noop constructor
// returns a stub whose every method succeeds with zero values; tests override
// only the fields they care about.

type userRepoStub struct {
	createFn         func(context.Context, *models.User) error
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	updateFn         func(context.Context, *models.User) error
	listFn           func(context.Context, int, int) ([]*models.User, error)
	setBlockLevelFn  func(context.Context, uint, int16) error
	deleteCascadeFn  func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error { return s.updateFn(ctx, u) }
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) SetAdminBlockLevel(ctx context.Context, userID uint, level int16) error {
	return s.setBlockLevelFn(ctx, userID, level)
}
func (s *userRepoStub) DeleteCascade(ctx context.Context, userID uint) error {
	return s.deleteCascadeFn(ctx, userID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(context.Context, *models.User) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, gorm.ErrRecordNotFound },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, gorm.ErrRecordNotFound },
		updateFn:        func(context.Context, *models.User) error { return nil },
		listFn:          func(context.Context, int, int) ([]*models.User, error) { return nil, nil },
		setBlockLevelFn: func(context.Context, uint, int16) error { return nil },
		deleteCascadeFn: func(context.Context, uint) error { return nil },
	}
}

type storyRepoStub struct {
	createFn        func(context.Context, *models.Story) error
	getByIDFn       func(context.Context, uint) (*models.Story, error)
	getByUserIDFn   func(context.Context, uint, bool, int, int) ([]*models.Story, error)
	updateFn        func(context.Context, *models.Story) error
	setStatusFn     func(context.Context, uint, string) error
	deleteCascadeFn func(context.Context, uint) error
	addPageFn       func(context.Context, *models.StoryPage) error
	getPageFn       func(context.Context, uint, int) (*models.StoryPage, error)
	getPagesFn      func(context.Context, uint) ([]*models.StoryPage, error)
	updatePageFn    func(context.Context, *models.StoryPage) error
	deletePageFn    func(context.Context, uint, int) error
	listTypesFn     func(context.Context) ([]models.StoryType, error)
}

func (s *storyRepoStub) Create(ctx context.Context, story *models.Story) error {
	return s.createFn(ctx, story)
}
func (s *storyRepoStub) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	return s.getByIDFn(ctx, id)
}
func (s *storyRepoStub) GetByUserID(ctx context.Context, userID uint, publishedOnly bool, limit, offset int) ([]*models.Story, error) {
	return s.getByUserIDFn(ctx, userID, publishedOnly, limit, offset)
}
func (s *storyRepoStub) Update(ctx context.Context, story *models.Story) error {
	return s.updateFn(ctx, story)
}
func (s *storyRepoStub) SetStatus(ctx context.Context, storyID uint, status string) error {
	return s.setStatusFn(ctx, storyID, status)
}
func (s *storyRepoStub) DeleteCascade(ctx context.Context, storyID uint) error {
	return s.deleteCascadeFn(ctx, storyID)
}
func (s *storyRepoStub) AddPage(ctx context.Context, page *models.StoryPage) error {
	return s.addPageFn(ctx, page)
}
func (s *storyRepoStub) GetPage(ctx context.Context, storyID uint, pageNumber int) (*models.StoryPage, error) {
	return s.getPageFn(ctx, storyID, pageNumber)
}
func (s *storyRepoStub) GetPages(ctx context.Context, storyID uint) ([]*models.StoryPage, error) {
	return s.getPagesFn(ctx, storyID)
}
func (s *storyRepoStub) UpdatePage(ctx context.Context, page *models.StoryPage) error {
	return s.updatePageFn(ctx, page)
}
func (s *storyRepoStub) DeletePage(ctx context.Context, storyID uint, pageNumber int) error {
	return s.deletePageFn(ctx, storyID, pageNumber)
}
func (s *storyRepoStub) ListTypes(ctx context.Context) ([]models.StoryType, error) {
	return s.listTypesFn(ctx)
}

func noopStoryRepo() *storyRepoStub {
	return &storyRepoStub{
		createFn: func(context.Context, *models.Story) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Story, error) {
			return &models.Story{ID: id, UserID: 1, Title: "t", Status: models.StoryStatusDraft}, nil
		},
		getByUserIDFn:   func(context.Context, uint, bool, int, int) ([]*models.Story, error) { return nil, nil },
		updateFn:        func(context.Context, *models.Story) error { return nil },
		setStatusFn:     func(context.Context, uint, string) error { return nil },
		deleteCascadeFn: func(context.Context, uint) error { return nil },
		addPageFn:       func(context.Context, *models.StoryPage) error { return nil },
		getPageFn: func(context.Context, uint, int) (*models.StoryPage, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getPagesFn:   func(context.Context, uint) ([]*models.StoryPage, error) { return nil, nil },
		updatePageFn: func(context.Context, *models.StoryPage) error { return nil },
		deletePageFn: func(context.Context, uint, int) error { return nil },
		listTypesFn:  func(context.Context) ([]models.StoryType, error) { return nil, nil },
	}
}

type feedRepoStub struct {
	globalFn      func(context.Context, uint, models.ExclusionSet, int, int) ([]models.StorySummary, error)
	fanOfFn       func(context.Context, uint, models.ExclusionSet, int, int) ([]models.StorySummary, error)
	becameFanFn   func(context.Context, uint, models.ExclusionSet, int, int) ([]models.StorySummary, error)
	topFn         func(context.Context, uint, models.ExclusionSet) ([]models.StorySummary, error)
	summaryByIDFn func(context.Context, uint, uint) (*models.StorySummary, error)
}

func (s *feedRepoStub) Global(ctx context.Context, viewerID uint, excl models.ExclusionSet, limit, offset int) ([]models.StorySummary, error) {
	return s.globalFn(ctx, viewerID, excl, limit, offset)
}
func (s *feedRepoStub) FanOf(ctx context.Context, viewerID uint, excl models.ExclusionSet, limit, offset int) ([]models.StorySummary, error) {
	return s.fanOfFn(ctx, viewerID, excl, limit, offset)
}
func (s *feedRepoStub) BecameFan(ctx context.Context, viewerID uint, excl models.ExclusionSet, limit, offset int) ([]models.StorySummary, error) {
	return s.becameFanFn(ctx, viewerID, excl, limit, offset)
}
func (s *feedRepoStub) Top(ctx context.Context, viewerID uint, excl models.ExclusionSet) ([]models.StorySummary, error) {
	return s.topFn(ctx, viewerID, excl)
}
func (s *feedRepoStub) SummaryByID(ctx context.Context, storyID, viewerID uint) (*models.StorySummary, error) {
	return s.summaryByIDFn(ctx, storyID, viewerID)
}

func noopFeedRepo() *feedRepoStub {
	return &feedRepoStub{
		globalFn: func(context.Context, uint, models.ExclusionSet, int, int) ([]models.StorySummary, error) {
			return nil, nil
		},
		fanOfFn: func(context.Context, uint, models.ExclusionSet, int, int) ([]models.StorySummary, error) {
			return nil, nil
		},
		becameFanFn: func(context.Context, uint, models.ExclusionSet, int, int) ([]models.StorySummary, error) {
			return nil, nil
		},
		topFn: func(context.Context, uint, models.ExclusionSet) ([]models.StorySummary, error) {
			return nil, nil
		},
		summaryByIDFn: func(_ context.Context, storyID, _ uint) (*models.StorySummary, error) {
			return &models.StorySummary{StoryID: storyID}, nil
		},
	}
}

type followRepoStub struct {
	followFn       func(context.Context, uint, uint) (bool, error)
	unfollowFn     func(context.Context, uint, uint) (int64, error)
	isFollowingFn  func(context.Context, uint, uint) (bool, error)
	followingIDsFn func(context.Context, uint) ([]uint, error)
	followerIDsFn  func(context.Context, uint) ([]uint, error)
	followingFn    func(context.Context, uint, int, int) ([]*models.User, error)
	followersFn    func(context.Context, uint, int, int) ([]*models.User, error)
	countsFn       func(context.Context, uint) (int64, int64, error)
}

func (s *followRepoStub) Follow(ctx context.Context, a, b uint) (bool, error) {
	return s.followFn(ctx, a, b)
}
func (s *followRepoStub) Unfollow(ctx context.Context, a, b uint) (int64, error) {
	return s.unfollowFn(ctx, a, b)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.isFollowingFn(ctx, a, b)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *followRepoStub) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followerIDsFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error) {
	return s.followingFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error) {
	return s.followersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	return s.countsFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:       func(context.Context, uint, uint) (bool, error) { return true, nil },
		unfollowFn:     func(context.Context, uint, uint) (int64, error) { return 1, nil },
		isFollowingFn:  func(context.Context, uint, uint) (bool, error) { return false, nil },
		followingIDsFn: func(context.Context, uint) ([]uint, error) { return nil, nil },
		followerIDsFn:  func(context.Context, uint) ([]uint, error) { return nil, nil },
		followingFn:    func(context.Context, uint, int, int) ([]*models.User, error) { return nil, nil },
		followersFn:    func(context.Context, uint, int, int) ([]*models.User, error) { return nil, nil },
		countsFn:       func(context.Context, uint) (int64, int64, error) { return 0, 0, nil },
	}
}

type reactionRepoStub struct {
	toggleLikeFn     func(context.Context, uint, uint) (bool, error)
	isLikedFn        func(context.Context, uint, uint) (bool, error)
	addViewFn        func(context.Context, uint, uint) error
	createCommentFn  func(context.Context, *models.Comment) error
	deleteCommentFn  func(context.Context, uint) error
	listCommentsFn   func(context.Context, uint, int, int) ([]*models.Comment, error)
	toggleBookmarkFn func(context.Context, uint, uint) (bool, error)
	listBookmarksFn  func(context.Context, uint) ([]uint, error)
	countsForFn      func(context.Context, []uint, uint) (map[uint]models.ReactionCounts, error)
}

func (s *reactionRepoStub) ToggleLike(ctx context.Context, storyID, userID uint) (bool, error) {
	return s.toggleLikeFn(ctx, storyID, userID)
}
func (s *reactionRepoStub) IsLiked(ctx context.Context, storyID, userID uint) (bool, error) {
	return s.isLikedFn(ctx, storyID, userID)
}
func (s *reactionRepoStub) AddView(ctx context.Context, storyID, viewerID uint) error {
	return s.addViewFn(ctx, storyID, viewerID)
}
func (s *reactionRepoStub) CreateComment(ctx context.Context, c *models.Comment) error {
	return s.createCommentFn(ctx, c)
}
func (s *reactionRepoStub) DeleteComment(ctx context.Context, id uint) error {
	return s.deleteCommentFn(ctx, id)
}
func (s *reactionRepoStub) ListComments(ctx context.Context, storyID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listCommentsFn(ctx, storyID, limit, offset)
}
func (s *reactionRepoStub) ToggleBookmark(ctx context.Context, storyID, userID uint) (bool, error) {
	return s.toggleBookmarkFn(ctx, storyID, userID)
}
func (s *reactionRepoStub) ListBookmarkedStoryIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.listBookmarksFn(ctx, userID)
}
func (s *reactionRepoStub) CountsFor(ctx context.Context, storyIDs []uint, viewerID uint) (map[uint]models.ReactionCounts, error) {
	return s.countsForFn(ctx, storyIDs, viewerID)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		toggleLikeFn:     func(context.Context, uint, uint) (bool, error) { return true, nil },
		isLikedFn:        func(context.Context, uint, uint) (bool, error) { return false, nil },
		addViewFn:        func(context.Context, uint, uint) error { return nil },
		createCommentFn:  func(context.Context, *models.Comment) error { return nil },
		deleteCommentFn:  func(context.Context, uint) error { return nil },
		listCommentsFn:   func(context.Context, uint, int, int) ([]*models.Comment, error) { return nil, nil },
		toggleBookmarkFn: func(context.Context, uint, uint) (bool, error) { return true, nil },
		listBookmarksFn:  func(context.Context, uint) ([]uint, error) { return nil, nil },
		countsForFn: func(context.Context, []uint, uint) (map[uint]models.ReactionCounts, error) {
			return map[uint]models.ReactionCounts{}, nil
		},
	}
}

type modRepoStub struct {
	upsertUserFlagFn   func(context.Context, uint, uint, int16) error
	upsertStoryFlagFn  func(context.Context, uint, uint, int16) error
	exclusionSetFn     func(context.Context, uint) (models.ExclusionSet, error)
	listUserReportsFn  func(context.Context, int, int) ([]*models.ReportBlockUser, error)
	listStoryReportsFn func(context.Context, int, int) ([]*models.ReportBlockStory, error)
	clearUserFlagFn    func(context.Context, uint, uint) error
	clearStoryFlagFn   func(context.Context, uint, uint) error
}

func (s *modRepoStub) UpsertUserFlag(ctx context.Context, userID, targetID uint, flag int16) error {
	return s.upsertUserFlagFn(ctx, userID, targetID, flag)
}
func (s *modRepoStub) UpsertStoryFlag(ctx context.Context, userID, storyID uint, flag int16) error {
	return s.upsertStoryFlagFn(ctx, userID, storyID, flag)
}
func (s *modRepoStub) ExclusionSet(ctx context.Context, viewerID uint) (models.ExclusionSet, error) {
	return s.exclusionSetFn(ctx, viewerID)
}
func (s *modRepoStub) ListUserReports(ctx context.Context, limit, offset int) ([]*models.ReportBlockUser, error) {
	return s.listUserReportsFn(ctx, limit, offset)
}
func (s *modRepoStub) ListStoryReports(ctx context.Context, limit, offset int) ([]*models.ReportBlockStory, error) {
	return s.listStoryReportsFn(ctx, limit, offset)
}
func (s *modRepoStub) ClearUserFlag(ctx context.Context, userID, targetID uint) error {
	return s.clearUserFlagFn(ctx, userID, targetID)
}
func (s *modRepoStub) ClearStoryFlag(ctx context.Context, userID, storyID uint) error {
	return s.clearStoryFlagFn(ctx, userID, storyID)
}

func noopModRepo() *modRepoStub {
	return &modRepoStub{
		upsertUserFlagFn:  func(context.Context, uint, uint, int16) error { return nil },
		upsertStoryFlagFn: func(context.Context, uint, uint, int16) error { return nil },
		exclusionSetFn: func(context.Context, uint) (models.ExclusionSet, error) {
			return models.ExclusionSet{}, nil
		},
		listUserReportsFn: func(context.Context, int, int) ([]*models.ReportBlockUser, error) {
			return nil, nil
		},
		listStoryReportsFn: func(context.Context, int, int) ([]*models.ReportBlockStory, error) {
			return nil, nil
		},
		clearUserFlagFn:  func(context.Context, uint, uint) error { return nil },
		clearStoryFlagFn: func(context.Context, uint, uint) error { return nil },
	}
}

type notifRepoStub struct {
	createBatchFn     func(context.Context, []models.Notification) (int64, error)
	listAndMarkReadFn func(context.Context, uint, int, int) ([]*models.Notification, error)
	unreadCountFn     func(context.Context, uint) (int64, error)
}

func (s *notifRepoStub) CreateBatch(ctx context.Context, batch []models.Notification) (int64, error) {
	return s.createBatchFn(ctx, batch)
}
func (s *notifRepoStub) ListAndMarkRead(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	return s.listAndMarkReadFn(ctx, recipientID, limit, offset)
}
func (s *notifRepoStub) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.unreadCountFn(ctx, recipientID)
}

func noopNotifRepo() *notifRepoStub {
	return &notifRepoStub{
		createBatchFn: func(_ context.Context, batch []models.Notification) (int64, error) {
			return int64(len(batch)), nil
		},
		listAndMarkReadFn: func(context.Context, uint, int, int) ([]*models.Notification, error) {
			return nil, nil
		},
		unreadCountFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

type mediaStoreStub struct {
	saveFn   func(io.Reader, string) (string, error)
	removeFn func(string) error
	pathFn   func(string) (string, error)
}

func (s *mediaStoreStub) Save(r io.Reader, ext string) (string, error) { return s.saveFn(r, ext) }
func (s *mediaStoreStub) Remove(ref string) error                      { return s.removeFn(ref) }
func (s *mediaStoreStub) Path(ref string) (string, error)              { return s.pathFn(ref) }

func noopMediaStore() *mediaStoreStub {
	return &mediaStoreStub{
		saveFn:   func(io.Reader, string) (string, error) { return "ref", nil },
		removeFn: func(string) error { return nil },
		pathFn:   func(ref string) (string, error) { return "/tmp/" + ref, nil },
	}
}
