package main

import (
	"log"
	"os"

	"knowledge-retrieval-be/internal/model"
	"knowledge-retrieval-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Collection{},
		&model.Document{},
		&model.DocumentSegment{},
		&model.MetadataField{},
		&model.RateLimitLog{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Indexes GORM tags cannot express
	log.Println("Step 3: Creating Search Indexes...")

	postMigrationSQL := []string{
		// ANN index for the vector channel
		`CREATE INDEX IF NOT EXISTS idx_document_segments_embedding
		 ON document_segments USING hnsw (embedding vector_cosine_ops);`,

		// Full-text index for the keyword channel. The 'simple' config must
		// match the one the keyword query uses or the planner skips the index.
		`CREATE INDEX IF NOT EXISTS idx_document_segments_content_fts
		 ON document_segments USING gin (to_tsvector('simple', content));`,

		// Metadata filters look up the JSONB bag by key
		`CREATE INDEX IF NOT EXISTS idx_documents_doc_metadata
		 ON documents USING gin (doc_metadata);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
