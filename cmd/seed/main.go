// Command seed populates the database with demo data for local development.
package main

import (
	"flag"
	"log"

	"vtelltales/internal/config"
	"vtelltales/internal/database"
	"vtelltales/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numStories := flag.Int("stories", 200, "Number of stories to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumStories:  *numStories,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
