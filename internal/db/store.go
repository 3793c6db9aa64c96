// Package db persists one record per completed blog request so past runs
// can be listed and their artifacts located.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Run is one completed blog request.
type Run struct {
	ID            string    `db:"id"`
	Topic         string    `db:"topic"`
	Mode          string    `db:"mode"`
	BlogKind      string    `db:"blog_kind"`
	Title         string    `db:"title"`
	SectionCount  int       `db:"section_count"`
	EvidenceCount int       `db:"evidence_count"`
	MarkdownPath  string    `db:"markdown_path"`
	ArchivePath   string    `db:"archive_path"`
	CreatedAt     time.Time `db:"created_at"`
}

// Store wraps the runs table.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	database.SetMaxOpenConns(10)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: database, logger: logger}, nil
}

// NewStore wraps an existing connection; used by tests.
func NewStore(database *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: database, logger: logger}
}

// Close releases the underlying pool.
func (s *Store) Close() error { return s.db.Close() }

// Ping reports connectivity; used by the health checker.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

const insertRun = `
INSERT INTO blog_runs (id, topic, mode, blog_kind, title, section_count, evidence_count, markdown_path, archive_path, created_at)
VALUES (:id, :topic, :mode, :blog_kind, :title, :section_count, :evidence_count, :markdown_path, :archive_path, :created_at)`

// SaveRun inserts one run record.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NamedExecContext(ctx, insertRun, run); err != nil {
		return fmt.Errorf("insert blog run %s: %w", run.ID, err)
	}
	s.logger.Debug("Saved blog run", zap.String("run_id", run.ID), zap.String("title", run.Title))
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		`SELECT id, topic, mode, blog_kind, title, section_count, evidence_count, markdown_path, archive_path, created_at
		 FROM blog_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list blog runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run,
		`SELECT id, topic, mode, blog_kind, title, section_count, evidence_count, markdown_path, archive_path, created_at
		 FROM blog_runs WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get blog run %s: %w", id, err)
	}
	return &run, nil
}
