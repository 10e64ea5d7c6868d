package main

import (
	"context"
	"database/sql"
	"log"
	"time"
	"truck-eta-service/internal/adapters/repositories"
	"truck-eta-service/internal/banzone"
	"truck-eta-service/internal/config"
	"truck-eta-service/internal/platform/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := initAndSeed(ctx, database, cfg.BanPolygonsPath, cfg.BanTimesPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, database *sql.DB, polygonsPath, banTimesPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, database); err != nil {
		return err
	}
	log.Println("Schema ready.")

	records, err := banzone.LoadRecords(polygonsPath, banTimesPath)
	if err != nil {
		return err
	}

	log.Printf("Seeding %d ban zones from %s...", len(records), banTimesPath)
	if err := repositories.SeedBanZones(ctx, database, records); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
