package main

import (
	"log"
	"os"

	"clientadmin/internal/app/repository"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("AUDIT_DSN")
	if dsn == "" {
		log.Fatal("AUDIT_DSN is empty. Check your .env file")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Connected to database successfully")

	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	log.Println("Database migration completed successfully")
}
