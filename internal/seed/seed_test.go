package seed

import (
	"testing"

	"vtelltales/internal/database"
	"vtelltales/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeed_PopulatesMesh(t *testing.T) {
	db := openSeedDB(t)

	err := Seed(db, Options{NumUsers: 10, NumStories: 25, ShouldClean: false})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 10 {
		t.Fatalf("expected 10 users, got %d", userCount)
	}

	var storyCount int64
	if err := db.Model(&models.Story{}).Count(&storyCount).Error; err != nil {
		t.Fatalf("count stories: %v", err)
	}
	if storyCount != 25 {
		t.Fatalf("expected 25 stories, got %d", storyCount)
	}

	// Every story has at least one page.
	var orphans int64
	err = db.Model(&models.Story{}).
		Where("NOT EXISTS (SELECT 1 FROM story_pages WHERE story_pages.story_id = stories.id)").
		Count(&orphans).Error
	if err != nil {
		t.Fatalf("count orphan stories: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("found %d stories without pages", orphans)
	}

	// No self follows in the mesh.
	var selfEdges int64
	err = db.Model(&models.FollowEdge{}).
		Where("follower_id = followee_id").Count(&selfEdges).Error
	if err != nil {
		t.Fatalf("count self edges: %v", err)
	}
	if selfEdges != 0 {
		t.Fatalf("found %d self-follow edges", selfEdges)
	}

	// The demo login exists.
	var demo models.User
	if err := db.Where("username = ?", "demo").First(&demo).Error; err != nil {
		t.Fatalf("missing demo user: %v", err)
	}
}

func TestSeed_CleanRemovesPreviousData(t *testing.T) {
	db := openSeedDB(t)

	if err := Seed(db, Options{NumUsers: 5, NumStories: 5}); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(db, Options{NumUsers: 5, NumStories: 5, ShouldClean: true}); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 5 {
		t.Fatalf("expected 5 users after clean reseed, got %d", userCount)
	}
}
