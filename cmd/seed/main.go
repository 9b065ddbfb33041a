// Command seed populates the database with demo governance data.
package main

import (
	"flag"
	"log"

	"clubhub/internal/config"
	"clubhub/internal/database"
	"clubhub/internal/seed"
)

func main() {
	numStudents := flag.Int("students", 50, "Number of students to create")
	numClubs := flag.Int("clubs", 8, "Number of clubs to create")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext demo passwords (faster for large runs)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d students, %d clubs\n", *numStudents, *numClubs)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Clubs(db); err != nil {
		log.Fatalf("Built-in club seeding failed: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumStudents: *numStudents,
		NumClubs:    *numClubs,
		SkipBcrypt:  *skipBcrypt,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
