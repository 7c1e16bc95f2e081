package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"vtelltales/internal/config"
	"vtelltales/internal/models"
	"vtelltales/internal/repository"
	"vtelltales/internal/storage"
	"vtelltales/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountService handles registration, login, profile edits and the
// admin-only user cascade deletion.
type AccountService struct {
	userRepo  repository.UserRepository
	storyRepo repository.StoryRepository
	media     storage.MediaStore
	notifier  *NotificationService
	cfg       *config.Config
}

// NewAccountService returns a new AccountService.
func NewAccountService(userRepo repository.UserRepository, storyRepo repository.StoryRepository, media storage.MediaStore, notifier *NotificationService, cfg *config.Config) *AccountService {
	return &AccountService{
		userRepo:  userRepo,
		storyRepo: storyRepo,
		media:     media,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if email == "" {
		return nil, models.NewValidationError("Email is required")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, models.NewConflictError("Email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, models.NewConflictError("Username is taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: username, Email: email, Password: string(hash)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// Login verifies credentials and returns the user plus a signed JWT.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", models.NewUnauthorizedError("Invalid email or password")
		}
		return nil, "", models.NewInternalError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", models.NewUnauthorizedError("Invalid email or password")
	}
	if user.AdminBlockLevel == models.AdminBlockHard {
		return nil, "", models.NewUnauthorizedError("Account is blocked")
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

func (s *AccountService) generateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(72 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// GetProfile returns one user.
func (s *AccountService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// UpdateProfile edits bio, avatar and username, then records a
// self-notification.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, username, bio, avatar string) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
			return nil, models.NewConflictError("Username is taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewInternalError(err)
		}
		user.Username = username
	}
	user.Bio = bio
	if avatar != "" {
		user.Avatar = avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.notifier.ProfileUpdated(ctx, userID)
	return user, nil
}

// DeleteUser removes a user and every dependent row in one all-or-nothing
// transaction. The calling admin must re-verify their own credentials; the
// check short-circuits before any mutation. Story media cleanup runs
// best-effort after the transaction commits.
func (s *AccountService) DeleteUser(ctx context.Context, userID uint, adminEmail, adminPassword string) error {
	admin, err := s.userRepo.GetByEmail(ctx, adminEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewUnauthorizedError("Admin credentials could not be verified")
		}
		return models.NewInternalError(err)
	}
	if !admin.IsAdmin ||
		bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(adminPassword)) != nil {
		return models.NewUnauthorizedError("Admin credentials could not be verified")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", userID)
		}
		return models.NewInternalError(err)
	}

	// Snapshot media refs before the rows are gone.
	var refs []string
	stories, err := s.storyRepo.GetByUserID(ctx, userID, false, 0, 0)
	if err != nil {
		return models.NewInternalError(err)
	}
	for _, story := range stories {
		if story.CoverImage != "" {
			refs = append(refs, story.CoverImage)
		}
		pages, err := s.storyRepo.GetPages(ctx, story.ID)
		if err != nil {
			return models.NewInternalError(err)
		}
		for _, p := range pages {
			if p.Media != "" {
				refs = append(refs, p.Media)
			}
		}
	}

	if err := s.userRepo.DeleteCascade(ctx, userID); err != nil {
		return models.NewInternalError(err)
	}

	removeMediaRefs(ctx, s.media, refs)
	return nil
}
