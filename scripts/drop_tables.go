package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"feedbackwidget/internal/config"
	"feedbackwidget/internal/repository/postgres"

	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	// Only the ledger for this environment's prefix is touched
	tables := postgres.NewTableNames(cfg.TablePrefix)
	dropSQL := fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables.Submissions)

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Fprintf(os.Stdout, "Dropped %s (prefix: %s)\n", tables.Submissions, cfg.TablePrefix)
}
