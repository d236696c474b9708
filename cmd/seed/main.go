// Command main runs the database seeder for CIF Connect.
package main

import (
	"flag"
	"log"

	"cifconnect/internal/config"
	"cifconnect/internal/database"
	"cifconnect/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	password := flag.String("password", "password123", "Password for all demo accounts")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(*password); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done. All demo accounts share the password:", *password)
}
