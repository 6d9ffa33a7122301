package main

import (
	"context"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"rental-ops-service/internal/adapters/repositories"
	"rental-ops-service/internal/config"
	"rental-ops-service/internal/platform/db"
)

// dbtool initializes the schema and seeds fleet reference data. Intended
// for local setup and CI; the server also runs InitSchema on startup.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, pool); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding fleet data...")
	if err := repositories.SeedFleetFromJSON(ctx, pool, cfg.SeedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
