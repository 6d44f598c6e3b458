package main

import (
	"log"
	"os"

	"haskify-be/internal/model"
	"haskify-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect to Database (also creates the vector extension)
	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM migration...")

	// 3. Pre-Migration: Extensions
	color.Yellow("Step 1: Setting up extensions")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	models := model.All()
	color.Yellow("Step 2: Running AutoMigrate for %d tables", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// 5. Post-Migration: composite indexes GORM tags cannot express
	color.Yellow("Step 3: Creating indexes")
	postMigrationSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_material_chunks_material_index ON material_chunks (material_id, chunk_index);`,
		`CREATE INDEX IF NOT EXISTS idx_materials_active_system ON materials (scope) WHERE is_active AND scope = 'system';`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_session_answered ON quiz_attempts (session_id, answered_at DESC);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	color.Green("✅ Success: Database migration completed.")
}
