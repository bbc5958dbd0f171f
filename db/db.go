package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DB wraps the database connection
type DB struct {
	conn   *sql.DB
	logger *zap.Logger
}

// NewDB opens a Postgres connection and makes sure the schema exists.
// An empty connStr falls back to DATABASE_URL and then to the DB_* variables.
func NewDB(ctx context.Context, connStr string, logger *zap.Logger) (*DB, error) {
	if connStr == "" {
		connStr = ConnStringFromEnv()
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := NewWithConn(conn, logger)
	if err := db.initSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// NewWithConn wraps an already opened connection without touching the schema
func NewWithConn(conn *sql.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{conn: conn, logger: logger}
}

// ConnStringFromEnv builds a connection string from the environment
func ConnStringFromEnv() string {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		return connStr
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "michelin")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "michelin")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS crawl_runs (
			id SERIAL PRIMARY KEY,
			sheet_name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
			records_count INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			finished_at TIMESTAMP,
			CONSTRAINT valid_status CHECK (status IN ('in_progress', 'done', 'failed'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create crawl_runs table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS restaurants (
			id SERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES crawl_runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			source_url TEXT NOT NULL,
			restaurant_name TEXT NOT NULL,
			city TEXT,
			cuisine_type TEXT,
			year_first_starred INTEGER,
			stars SMALLINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT valid_stars CHECK (stars IS NULL OR stars BETWEEN 1 AND 3)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create restaurants table: %w", err)
	}

	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_crawl_runs_status ON crawl_runs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_restaurants_run_id ON restaurants(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_restaurants_source_url ON restaurants(source_url)`,
	} {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			db.logger.Warn("failed to create index", zap.String("sql", stmt), zap.Error(err))
		}
	}

	db.logger.Info("database schema initialized")
	return nil
}
