package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const usage = "Usage: go run ./cmd/migrate [up|drop|reset]"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	// Get command
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	// Connect to database
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "up":
		if err := runQueries(ctx, conn, upQueries); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "drop":
		if err := runQueries(ctx, conn, dropQueries); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "reset":
		if err := runQueries(ctx, conn, append(dropQueries, upQueries...)); err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
		fmt.Println("✅ Tables recreated successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

var upQueries = []string{
	`CREATE TABLE IF NOT EXISTS participants (
		email TEXT PRIMARY KEY,
		participant_id TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'participant' CHECK (role IN ('participant', 'admin')),
		team_name TEXT,
		payment_status TEXT NOT NULL DEFAULT 'unpaid' CHECK (payment_status IN ('unpaid', 'pending', 'paid')),
		record JSONB NOT NULL,
		registered_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_updated_at ON participants (updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_payment_status ON participants (payment_status)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_participant_id ON participants (participant_id)`,
}

var dropQueries = []string{
	`DROP TABLE IF EXISTS participants CASCADE`,
}

func runQueries(ctx context.Context, conn *pgx.Conn, queries []string) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, query := range queries {
		if _, err := tx.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Executed: %.60s\n", query)
	}

	return tx.Commit(ctx)
}
