package main

import (
	"context"
	"log"
	"os"
	"time"

	"campusbook/internal/database"
	"campusbook/internal/modules/notification"
)

// Purges read notifications older than 30 days. Run from cron.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	repo := notification.NewRepository(db)
	cutoff := time.Now().AddDate(0, 0, -30)

	purged, err := repo.PurgeRead(context.Background(), cutoff)
	if err != nil {
		log.Fatalf("notification cleanup failed: %v", err)
	}

	log.Printf("notification cleanup completed: purged=%d cutoff=%s", purged, cutoff.Format(time.RFC3339))
}
