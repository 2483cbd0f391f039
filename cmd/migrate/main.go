package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"authbase/internal/platform/config"
	"authbase/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	dir := flag.String("dir", "migrations", "Path to migration directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := runMigrations(db, *dir); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Migration completed successfully")
}

func runMigrations(db *sql.DB, dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migration directory: %w", err)
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) != ".sql" {
			continue
		}

		// A very simple migration runner that runs all SQL files in order.
		// Statements use IF NOT EXISTS so reruns are harmless.
		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		log.Printf("Applying migration: %s", file.Name())
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file.Name(), err)
		}
	}
	return nil
}
