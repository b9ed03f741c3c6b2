package output

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goapply/goapply/internal/types"
	"github.com/lib/pq"
)

const defaultTable = "job_applications"

// PostgresWriter inserts records into a table that is created on first use.
type PostgresWriter struct {
	*WriterConfig
	db         *sql.DB
	table      string
	schemaOnce sync.Once
	schemaErr  error
	logger     *slog.Logger
}

// NewPostgresWriter opens the connection pool lazily; the database is first
// contacted when a record is written or listed.
func NewPostgresWriter(wc *WriterConfig) (*PostgresWriter, error) {
	if wc.Uri == "" {
		return nil, errors.New("uri needs to be specified for the PostgresWriter")
	}
	db, err := sql.Open("postgres", wc.Uri)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return newPostgresWriter(wc, db), nil
}

func newPostgresWriter(wc *WriterConfig, db *sql.DB) *PostgresWriter {
	table := wc.Table
	if table == "" {
		table = defaultTable
	}
	return &PostgresWriter{
		WriterConfig: wc,
		db:           db,
		table:        pq.QuoteIdentifier(table),
		logger:       slog.With(slog.String("writer", string(POSTGRES_WRITER_TYPE))),
	}
}

func (w *PostgresWriter) createTableQuery() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id SERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	position_title TEXT NOT NULL,
	company_name TEXT NOT NULL,
	location TEXT NOT NULL,
	platform TEXT NOT NULL,
	job_url TEXT NOT NULL,
	application_status TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL
)`, w.table)
}

func (w *PostgresWriter) insertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (run_id, position_title, company_name, location, platform, job_url, application_status, applied_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, w.table)
}

func (w *PostgresWriter) listQuery() string {
	return fmt.Sprintf(`SELECT run_id, position_title, company_name, location, platform, job_url, application_status, applied_at
	FROM %s ORDER BY applied_at DESC, id DESC LIMIT $1`, w.table)
}

func (w *PostgresWriter) ensureSchema(ctx context.Context) error {
	w.schemaOnce.Do(func() {
		_, w.schemaErr = w.db.ExecContext(ctx, w.createTableQuery())
	})
	return w.schemaErr
}

func (w *PostgresWriter) Write(recordChan <-chan types.ApplicationRecord) {
	defer w.db.Close()
	n := 0
	for rec := range recordChan {
		if err := w.insert(context.Background(), rec); err != nil {
			w.logger.Error(fmt.Sprintf("error while inserting record: %v", err))
			continue
		}
		n++
	}
	w.logger.Info(fmt.Sprintf("inserted %d records into %s", n, w.table))
}

func (w *PostgresWriter) insert(ctx context.Context, rec types.ApplicationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := w.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := w.db.ExecContext(ctx, w.insertQuery(),
		rec.RunID, rec.JobTitle, rec.Company, rec.Location, string(rec.Platform),
		rec.SourceURL, string(rec.Status), rec.AppliedAt)
	return err
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (w *PostgresWriter) List(ctx context.Context, limit int) ([]types.ApplicationRecord, error) {
	if err := w.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var arg any = limit
	if limit <= 0 {
		arg = nil
	}
	rows, err := w.db.QueryContext(ctx, w.listQuery(), arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []types.ApplicationRecord
	for rows.Next() {
		var rec types.ApplicationRecord
		var platform, status string
		if err := rows.Scan(&rec.RunID, &rec.JobTitle, &rec.Company, &rec.Location, &platform, &rec.SourceURL, &status, &rec.AppliedAt); err != nil {
			return nil, err
		}
		rec.Platform = types.Platform(platform)
		rec.Status = types.ApplicationStatus(status)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
