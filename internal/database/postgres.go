package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/adyen/storefront-e2e/internal/config"
	_ "github.com/lib/pq"
)

// DB is the run history connection opened by Connect
var DB *sql.DB

// Connect opens DB from the POSTGRES_* environment
func Connect() error {
	pgConfig, err := config.LoadPostgresConfig(os.Getenv)
	if err != nil {
		return fmt.Errorf("failed to load postgres config: %w", err)
	}

	DB, err = Open(pgConfig)
	return err
}

// Open connects to the database described by cfg and verifies the connection.
// The suite records from a single goroutine, so the pool stays small.
func Open(cfg *config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
