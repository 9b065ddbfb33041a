// Command migrate applies the database schema.
package main

import (
	"log"

	"clubhub/internal/config"
	"clubhub/internal/database"
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

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Schema up to date")
}
