// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"vtelltales/internal/cache"
	"vtelltales/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	SetAdminBlockLevel(ctx context.Context, userID uint, level int16) error
	DeleteCascade(ctx context.Context, userID uint) error
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *userRepository) SetAdminBlockLevel(ctx context.Context, userID uint, level int16) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("admin_block_level", level)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

// DeleteCascade removes the user and every dependent row in a single
// transaction. Any failure rolls the whole cascade back.
func (r *userRepository) DeleteCascade(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var storyIDs []uint
		if err := tx.Model(&models.Story{}).
			Where("user_id = ?", userID).
			Pluck("id", &storyIDs).Error; err != nil {
			return err
		}

		if len(storyIDs) > 0 {
			// Rows hanging off the user's stories, regardless of who created them.
			for _, m := range []interface{}{
				&models.StoryPage{}, &models.Like{}, &models.View{},
				&models.Comment{}, &models.Bookmark{}, &models.ReportBlockStory{},
			} {
				if err := tx.Where("story_id IN ?", storyIDs).Delete(m).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("story_id IN ?", storyIDs).Delete(&models.Notification{}).Error; err != nil {
				return err
			}
		}

		// Rows the user created against other people's stories.
		for _, m := range []interface{}{
			&models.Like{}, &models.Comment{},
			&models.Bookmark{}, &models.ReportBlockStory{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("viewer_id = ?", userID).Delete(&models.View{}).Error; err != nil {
			return err
		}

		if err := tx.Where("follower_id = ? OR followee_id = ?", userID, userID).
			Delete(&models.FollowEdge{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR target_user_id = ?", userID, userID).
			Delete(&models.ReportBlockUser{}).Error; err != nil {
			return err
		}
		if err := tx.Where("actor_id = ? OR recipient_id = ?", userID, userID).
			Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Story{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateUser(ctx, userID)
	cache.InvalidatePublicFeeds(ctx)
	return nil
}
