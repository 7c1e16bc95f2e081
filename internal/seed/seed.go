package seed

import (
	"fmt"
	"log"

	"vtelltales/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumStories  int
	ShouldClean bool
}

// Seed populates the database with demo users, stories, a follow mesh and
// engagement data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users and %d stories...", opts.NumUsers, opts.NumStories)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Printf("Warning: could not clear all existing data: %v", err)
		}
	}

	if err := StoryTypes(db); err != nil {
		return fmt.Errorf("seed story types: %w", err)
	}

	f := NewFactory(db)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	stories, err := createStories(f, users, opts.NumStories)
	if err != nil {
		return fmt.Errorf("create stories: %w", err)
	}
	log.Printf("Created %d stories", len(stories))

	if err := createFollowMesh(f, users); err != nil {
		return fmt.Errorf("create follow mesh: %w", err)
	}
	if err := createEngagement(f, users, stories); err != nil {
		return fmt.Errorf("create engagement: %w", err)
	}

	log.Println("Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	tables := []string{
		"notifications", "report_block_stories", "report_block_users",
		"follow_edges", "bookmarks", "comments", "views", "likes",
		"story_pages", "stories", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(f *Factory, count int) ([]models.User, error) {
	users := make([]models.User, 0, count)

	// A predictable login for local development.
	demo, err := f.CreateUser(func(u *models.User) {
		u.Username = "demo"
		u.Email = "demo@example.com"
	})
	if err == nil {
		users = append(users, *demo)
	}

	// Retry on the rare generated-username collision.
	for attempts := 0; len(users) < count && attempts < count*3; attempts++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, *user)
	}
	return users, nil
}

func createStories(f *Factory, users []models.User, count int) ([]models.Story, error) {
	stories := make([]models.Story, 0, count)
	for i := 0; i < count; i++ {
		author := users[f.r.Intn(len(users))]

		// Most demo stories are published so the feeds have content.
		status := models.StoryStatusPublished
		if f.r.Float32() < 0.15 {
			status = models.StoryStatusDraft
		}

		story, err := f.CreateStory(&author, status)
		if err != nil {
			return nil, err
		}
		if _, err := f.CreatePages(story, f.r.Intn(5)+1); err != nil {
			return nil, err
		}
		stories = append(stories, *story)

		if status == models.StoryStatusPublished {
			err := f.db.Create(&models.Notification{
				ActorID:     author.ID,
				RecipientID: author.ID,
				Type:        models.NotifyTypeStoryPublished,
				StoryID:     &story.ID,
				IsRead:      f.r.Float32() < 0.7,
			}).Error
			if err != nil {
				return nil, err
			}
		}
	}
	return stories, nil
}

// createFollowMesh gives every user a handful of followees, skipping self
// edges. Each new edge produces the follow notification the live path would.
func createFollowMesh(f *Factory, users []models.User) error {
	for _, follower := range users {
		for i := 0; i < f.r.Intn(6); i++ {
			followee := users[f.r.Intn(len(users))]
			if followee.ID == follower.ID {
				continue
			}
			edge := models.FollowEdge{FollowerID: follower.ID, FolloweeID: followee.ID}
			res := f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			err := f.db.Create(&models.Notification{
				ActorID:     follower.ID,
				RecipientID: followee.ID,
				Type:        models.NotifyTypeFollow,
				IsRead:      f.r.Float32() < 0.5,
			}).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func createEngagement(f *Factory, users []models.User, stories []models.Story) error {
	for _, story := range stories {
		if story.Status != models.StoryStatusPublished {
			continue
		}

		for i := 0; i < f.r.Intn(8); i++ {
			viewer := users[f.r.Intn(len(users))]
			err := f.db.Create(&models.View{StoryID: story.ID, ViewerID: viewer.ID}).Error
			if err != nil {
				return err
			}
		}

		for i := 0; i < f.r.Intn(5); i++ {
			liker := users[f.r.Intn(len(users))]
			if liker.ID == story.UserID {
				continue
			}
			like := models.Like{StoryID: story.ID, UserID: liker.ID}
			res := f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			err := f.db.Create(&models.Notification{
				ActorID:     liker.ID,
				RecipientID: story.UserID,
				Type:        models.NotifyTypeStoryLiked,
				StoryID:     &story.ID,
				IsRead:      f.r.Float32() < 0.5,
			}).Error
			if err != nil {
				return err
			}
		}

		if f.r.Float32() < 0.4 {
			commenter := users[f.r.Intn(len(users))]
			if _, err := f.CreateComment(&story, &commenter); err != nil {
				return err
			}
		}

		// A sprinkle of reports keeps the admin screens non-empty.
		if f.r.Float32() < 0.05 {
			reporter := users[f.r.Intn(len(users))]
			if reporter.ID == story.UserID {
				continue
			}
			flag := models.ReportBlockStory{
				UserID:  reporter.ID,
				StoryID: story.ID,
				Flag:    models.FlagReport,
			}
			if err := f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&flag).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
