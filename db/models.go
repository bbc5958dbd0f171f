package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"michelin-scraper/models"

	"go.uber.org/zap"
)

// Run statuses
const (
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// CrawlRun represents one pipeline run stored in database
type CrawlRun struct {
	ID           int
	SheetName    string
	Status       string // "in_progress", "done", "failed"
	RecordsCount int
	LastError    sql.NullString
	StartedAt    time.Time
	FinishedAt   sql.NullTime
}

// CreateRun starts a new crawl run
func (db *DB) CreateRun(ctx context.Context, sheetName string) (*CrawlRun, error) {
	var run CrawlRun
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO crawl_runs (sheet_name, status)
		VALUES ($1, 'in_progress')
		RETURNING id, sheet_name, status, records_count, started_at
	`, sheetName).Scan(&run.ID, &run.SheetName, &run.Status, &run.RecordsCount, &run.StartedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun retrieves a crawl run by ID
func (db *DB) GetRun(ctx context.Context, runID int) (*CrawlRun, error) {
	var run CrawlRun
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, sheet_name, status, records_count, last_error, started_at, finished_at
		FROM crawl_runs
		WHERE id = $1
	`, runID).Scan(
		&run.ID, &run.SheetName, &run.Status, &run.RecordsCount,
		&run.LastError, &run.StartedAt, &run.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FinishRun marks a run done, or failed when runErr is not nil
func (db *DB) FinishRun(ctx context.Context, runID int, recordsCount int, runErr error) error {
	status := StatusDone
	var lastError sql.NullString
	if runErr != nil {
		status = StatusFailed
		lastError = sql.NullString{String: runErr.Error(), Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, `
		UPDATE crawl_runs
		SET status = $1, records_count = $2, last_error = $3, finished_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`, status, recordsCount, lastError, runID)
	return err
}

// SaveRecords stores the records of a run in a single transaction.
// Positions are 1-based and follow dataset order.
func (db *DB) SaveRecords(ctx context.Context, runID int, records []models.Record) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO restaurants (run_id, position, source_url, restaurant_name, city, cuisine_type, year_first_starred, stars)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx, runID, i+1, r.SourceURL, r.RestaurantName,
			nullString(r.City), nullString(r.CuisineType),
			nullInt(r.YearFirstStarred), nullInt(r.Stars))
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// GetRecords returns the records of a run in dataset order
func (db *DB) GetRecords(ctx context.Context, runID int) ([]models.Record, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT source_url, restaurant_name, city, cuisine_type, year_first_starred, stars
		FROM restaurants
		WHERE run_id = $1
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		var city, cuisine sql.NullString
		var year, stars sql.NullInt64
		if err := rows.Scan(&r.SourceURL, &r.RestaurantName, &city, &cuisine, &year, &stars); err != nil {
			return nil, err
		}
		if city.Valid {
			r.City = &city.String
		}
		if cuisine.Valid {
			r.CuisineType = &cuisine.String
		}
		if year.Valid {
			r.YearFirstStarred = models.IntPtr(int(year.Int64))
		}
		if stars.Valid {
			r.Stars = models.IntPtr(int(stars.Int64))
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Write implements sink.Sink: one crawl run per write
func (db *DB) Write(ctx context.Context, sheetName string, ds models.Dataset) error {
	run, err := db.CreateRun(ctx, sheetName)
	if err != nil {
		return fmt.Errorf("failed to create crawl run: %w", err)
	}

	saveErr := db.SaveRecords(ctx, run.ID, ds.Records)
	count := ds.Len()
	if saveErr != nil {
		count = 0
	}
	if err := db.FinishRun(ctx, run.ID, count, saveErr); err != nil {
		db.logger.Error("failed to update crawl run", zap.Int("run_id", run.ID), zap.Error(err))
	}
	if saveErr != nil {
		return saveErr
	}

	db.logger.Info("saved records to database",
		zap.Int("run_id", run.ID),
		zap.Int("records", count))
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
