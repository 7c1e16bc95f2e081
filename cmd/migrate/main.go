// Command migrate applies the database schema and built-in lookup data.
// Production deploys run it explicitly; development relies on the automatic
// migration the server performs at startup.
package main

import (
	"log"

	"vtelltales/internal/config"
	"vtelltales/internal/database"
	"vtelltales/internal/seed"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := seed.StoryTypes(db); err != nil {
		log.Fatalf("Story type seeding failed: %v", err)
	}

	log.Println("Schema and story types applied")
}
