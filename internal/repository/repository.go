// Package repository persists the phone catalog together with the
// recommendation and feedback logs. The same SQL runs on PostgreSQL and SQLite.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"phonefinder/internal/model"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by name
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

const schema = `
CREATE TABLE IF NOT EXISTS phones (
	id               TEXT PRIMARY KEY,
	seq              INTEGER NOT NULL DEFAULT 0,
	brand            TEXT NOT NULL,
	model            TEXT NOT NULL,
	slug             TEXT NOT NULL,
	release_year     INTEGER,
	price_usd        DOUBLE PRECISION,
	display_inches   DOUBLE PRECISION,
	battery_mah      INTEGER,
	ram_gb           DOUBLE PRECISION,
	storage_gb       DOUBLE PRECISION,
	main_camera_mp   DOUBLE PRECISION,
	os               TEXT NOT NULL DEFAULT '',
	weight_g         DOUBLE PRECISION,
	notable_features TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS recommendation_logs (
	id               TEXT PRIMARY KEY,
	query_text       TEXT NOT NULL DEFAULT '',
	intent           TEXT NOT NULL,
	strategy         TEXT NOT NULL,
	result_count     INTEGER NOT NULL,
	returned_slugs   TEXT,
	response_time_ms BIGINT NOT NULL,
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feedback_logs (
	recommendation_id TEXT NOT NULL,
	slug              TEXT NOT NULL,
	action            TEXT NOT NULL,
	created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_phones_slug ON phones(slug);
CREATE INDEX IF NOT EXISTS idx_feedback_recommendation ON feedback_logs(recommendation_id);
`

const phoneColumns = `id, seq, brand, model, slug, release_year, price_usd, display_inches, battery_mah,
	ram_gb, storage_gb, main_camera_mp, os, weight_g, notable_features`

// phoneRow carries the catalog position next to the record
type phoneRow struct {
	model.Phone
	Seq int `db:"seq"`
}

// Repository handles database operations
type Repository struct {
	db *sqlx.DB
}

// New connects to the database for driver ("postgres" or "sqlite")
func New(driver, dsn string, maxConn, maxIdleConn int) (*Repository, error) {
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// one writer; the async log goroutines would otherwise hit SQLITE_BUSY
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure sqlite: %w", err)
		}
	} else {
		db.SetMaxOpenConns(maxConn)
		db.SetMaxIdleConns(maxIdleConn)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(2 * time.Minute)
	}

	return &Repository{db: db}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Migrate creates the tables if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// UpsertPhones inserts or replaces phones by id in one transaction and
// returns how many were written. The slice order is kept as catalog order.
func (r *Repository) UpsertPhones(ctx context.Context, phones []model.Phone) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO phones (` + phoneColumns + `)
		VALUES (:id, :seq, :brand, :model, :slug, :release_year, :price_usd, :display_inches, :battery_mah,
			:ram_gb, :storage_gb, :main_camera_mp, :os, :weight_g, :notable_features)
		ON CONFLICT (id) DO UPDATE SET
			seq = excluded.seq,
			brand = excluded.brand,
			model = excluded.model,
			slug = excluded.slug,
			release_year = excluded.release_year,
			price_usd = excluded.price_usd,
			display_inches = excluded.display_inches,
			battery_mah = excluded.battery_mah,
			ram_gb = excluded.ram_gb,
			storage_gb = excluded.storage_gb,
			main_camera_mp = excluded.main_camera_mp,
			os = excluded.os,
			weight_g = excluded.weight_g,
			notable_features = excluded.notable_features
	`
	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for i, p := range phones {
		if strings.TrimSpace(p.ID) == "" {
			return 0, fmt.Errorf("phone %d (%s %s) has no id", i, p.Brand, p.Model)
		}
		if _, err := stmt.ExecContext(ctx, phoneRow{Phone: p, Seq: i}); err != nil {
			return 0, fmt.Errorf("failed to upsert phone %s: %w", p.ID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

// LoadPhones returns every stored phone in catalog order
func (r *Repository) LoadPhones(ctx context.Context) ([]model.Phone, error) {
	var rows []phoneRow
	query := `SELECT ` + phoneColumns + ` FROM phones ORDER BY seq, id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load phones: %w", err)
	}

	phones := make([]model.Phone, len(rows))
	for i, row := range rows {
		phones[i] = row.Phone
	}
	return phones, nil
}

// LogRecommendation stores one served recommendation
func (r *Repository) LogRecommendation(ctx context.Context, entry *model.RecommendationLog) error {
	query := `
		INSERT INTO recommendation_logs (id, query_text, intent, strategy, result_count, returned_slugs, response_time_ms)
		VALUES (:id, :query_text, :intent, :strategy, :result_count, :returned_slugs, :response_time_ms)
	`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to log recommendation: %w", err)
	}
	return nil
}

// GetRecommendation reads a stored recommendation back
func (r *Repository) GetRecommendation(ctx context.Context, id string) (*model.RecommendationLog, error) {
	var entry model.RecommendationLog
	query := r.db.Rebind(`
		SELECT id, query_text, intent, strategy, result_count, returned_slugs, response_time_ms
		FROM recommendation_logs
		WHERE id = ?
	`)
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	return &entry, nil
}

// LogFeedback logs user feedback/action
func (r *Repository) LogFeedback(ctx context.Context, recommendationID, slug, action string) error {
	query := r.db.Rebind(`INSERT INTO feedback_logs (recommendation_id, slug, action) VALUES (?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, recommendationID, slug, action); err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}

// FeedbackCount returns how many feedback rows exist for a recommendation
func (r *Repository) FeedbackCount(ctx context.Context, recommendationID string) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM feedback_logs WHERE recommendation_id = ?`)
	if err := r.db.GetContext(ctx, &n, query, recommendationID); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return n, nil
}
