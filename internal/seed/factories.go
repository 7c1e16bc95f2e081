// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"vtelltales/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	//nolint:gosec // weak randomness is fine for demo data
	return &Factory{db: db, r: rand.New(rand.NewSource(seed))}
}

// CreateUser constructs and persists a sample user. All seed users share the
// password "password123" so any of them can be used to log in locally.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateStory constructs and persists a story with a realistic created_at
// spread over the last 90 days. Pages are not created; see CreatePages.
func (f *Factory) CreateStory(author *models.User, status models.StoryStatus, overrides ...func(*models.Story)) (*models.Story, error) {
	story := &models.Story{
		UserID:      author.ID,
		Title:       gofakeit.BookTitle(),
		Description: gofakeit.Sentence(12),
		CoverImage:  fmt.Sprintf("https://picsum.photos/seed/%s/600/400", gofakeit.UUID()),
		Status:      status,
	}

	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	story.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	var storyType models.StoryType
	if err := f.db.Order("RANDOM()").First(&storyType).Error; err == nil {
		story.StoryTypeID = &storyType.ID
	}

	for _, override := range overrides {
		override(story)
	}
	if err := f.db.Create(story).Error; err != nil {
		return nil, err
	}
	return story, nil
}

// CreatePages persists count numbered pages for the story in one batch.
func (f *Factory) CreatePages(story *models.Story, count int) ([]models.StoryPage, error) {
	pages := make([]models.StoryPage, 0, count)
	for i := 1; i <= count; i++ {
		page := models.StoryPage{
			StoryID:     story.ID,
			PageNumber:  i,
			Content:     gofakeit.Paragraph(1, 3, 8, "\n"),
			ContentType: "text",
			Format:      "plain",
		}
		if f.r.Float32() < 0.3 {
			page.Media = fmt.Sprintf("https://picsum.photos/seed/page-%s/800/600", gofakeit.UUID())
		}
		pages = append(pages, page)
	}
	if err := f.db.Create(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// CreateComment persists a comment by the given user on the story.
func (f *Factory) CreateComment(story *models.Story, user *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		StoryID: story.ID,
		UserID:  user.ID,
		Content: gofakeit.Sentence(f.r.Intn(15) + 3),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
