package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const createExtractionsTable = `
CREATE TABLE IF NOT EXISTS extractions (
    id          TEXT PRIMARY KEY,
    filename    TEXT NOT NULL,
    format      TEXT NOT NULL,
    mode        TEXT NOT NULL,
    skills      TEXT NOT NULL,
    text_length INTEGER NOT NULL,
    duration_ms BIGINT NOT NULL,
    created_at  BIGINT NOT NULL
)`

type DB struct {
	connection *sql.DB
	driver     string
}

// NewDB opens the history database and creates the schema.
func NewDB(ctx context.Context, driver, dataSourceName string) (*DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, eris.Errorf("storage: unknown driver %q", driver)
	}

	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, eris.Wrap(err, "storage: open")
	}

	// Connection pool tuning
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "storage: ping")
	}

	if _, err := db.ExecContext(ctx, createExtractionsTable); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "storage: migrate")
	}

	return &DB{connection: db, driver: driver}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		zap.L().Warn("storage: error closing the database connection", zap.Error(err))
	}
}

// SaveExtraction inserts a record, assigning an ID and timestamp when unset.
func (db *DB) SaveExtraction(ctx context.Context, rec *ExtractionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	skills, err := json.Marshal(rec.Skills)
	if err != nil {
		return eris.Wrap(err, "storage: marshal skills")
	}

	query := `INSERT INTO extractions (id, filename, format, mode, skills, text_length, duration_ms, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = db.connection.ExecContext(ctx, query,
		rec.ID,
		rec.Filename,
		rec.Format,
		rec.Mode,
		string(skills),
		rec.TextLength,
		rec.Duration.Milliseconds(),
		rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return eris.Wrapf(err, "storage: insert extraction %s", rec.ID)
	}
	return nil
}

// RecentExtractions returns up to limit records, newest first.
func (db *DB) RecentExtractions(ctx context.Context, limit int) ([]*ExtractionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.connection.QueryContext(ctx, `
		SELECT id, filename, format, mode, skills, text_length, duration_ms, created_at
		FROM extractions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "storage: query extractions")
	}
	defer rows.Close()

	records := []*ExtractionRecord{}
	for rows.Next() {
		var (
			rec        ExtractionRecord
			skills     string
			durationMs int64
			createdAt  int64
		)
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Format, &rec.Mode, &skills, &rec.TextLength, &durationMs, &createdAt); err != nil {
			return nil, eris.Wrap(err, "storage: scan extraction")
		}
		if err := json.Unmarshal([]byte(skills), &rec.Skills); err != nil {
			return nil, eris.Wrapf(err, "storage: decode skills for %s", rec.ID)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, &rec)
	}
	return records, eris.Wrap(rows.Err(), "storage: iterate extractions")
}
