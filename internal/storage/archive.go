// Package storage persists finished analyses: a SQL run archive (SQLite or
// PostgreSQL through sqlx) and atomic JSON snapshot files.
//
// The archive is write-and-list only. Nothing is ever read back into a session,
// so two runs with the same selection always hit the indicator service.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/models"
)

// Series names stored in series_values.series.
const (
	SeriesPrimary   = "primary"
	SeriesSecondary = "secondary"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		country TEXT NOT NULL,
		indicator TEXT NOT NULL,
		start_year INTEGER NOT NULL,
		end_year INTEGER NOT NULL,
		valid BOOLEAN NOT NULL,
		reason TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS series_values (
		run_id TEXT NOT NULL REFERENCES analysis_runs(id),
		series TEXT NOT NULL,
		year INTEGER NOT NULL,
		kind TEXT NOT NULL,
		num DOUBLE PRECISION,
		txt TEXT,
		PRIMARY KEY (run_id, series, year)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_fetched_at ON analysis_runs (fetched_at)`,
}

// Run is one archived analysis as listed by History.
type Run struct {
	ID        string    `db:"id" json:"id"`
	Country   string    `db:"country" json:"country"`
	Indicator string    `db:"indicator" json:"indicator"`
	StartYear int       `db:"start_year" json:"start_year"`
	EndYear   int       `db:"end_year" json:"end_year"`
	Valid     bool      `db:"valid" json:"valid"`
	Reason    string    `db:"reason" json:"reason,omitempty"`
	FetchedAt time.Time `db:"fetched_at" json:"fetched_at"`
}

// Archive records analyses in a SQL database.
type Archive struct {
	db *sqlx.DB
}

// NewArchive wraps an open database handle.
func NewArchive(db *sqlx.DB) *Archive {
	return &Archive{db: db}
}

// Open connects to driver ("sqlite" or "postgres") and makes sure the schema
// exists. For SQLite the parent directory of a file DSN is created.
func Open(ctx context.Context, driver, dsn string) (*Archive, error) {
	switch driver {
	case "sqlite":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create archive directory: %w", err)
			}
		}
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported archive driver: %s", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to archive: %w", err)
	}
	if driver == "sqlite" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	a := NewArchive(db)
	if err := a.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Migrate creates the archive tables if they do not exist.
func (a *Archive) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate archive: %w", err)
		}
	}
	return nil
}

// Record stores state and its series. Recording the same run again replaces
// its verdict and values.
func (a *Archive) Record(ctx context.Context, state *models.State) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertRun := tx.Rebind(`
		INSERT INTO analysis_runs (id, country, indicator, start_year, end_year, valid, reason, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET valid = excluded.valid, reason = excluded.reason`)
	_, err = tx.ExecContext(ctx, insertRun,
		state.ID(),
		catalog.CountryCode(state.Country()),
		catalog.IndicatorAt(state.Indicator()).Code,
		state.StartYear(),
		state.EndYear(),
		state.Valid(),
		state.Reason(),
		state.FetchedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM series_values WHERE run_id = ?`), state.ID()); err != nil {
		return fmt.Errorf("failed to clear series values: %w", err)
	}

	insertValue := tx.Rebind(`
		INSERT INTO series_values (run_id, series, year, kind, num, txt)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for _, named := range []struct {
		name   string
		series models.Series
	}{
		{SeriesPrimary, state.Primary()},
		{SeriesSecondary, state.Secondary()},
	} {
		for _, year := range named.series.Years() {
			v := named.series.Get(year)
			num, txt := columns(v)
			if _, err := tx.ExecContext(ctx, insertValue, state.ID(), named.name, year, v.Kind.String(), num, txt); err != nil {
				return fmt.Errorf("failed to insert %s value for %d: %w", named.name, year, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// History lists the most recent runs, newest first.
func (a *Archive) History(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := a.db.Rebind(`
		SELECT id, country, indicator, start_year, end_year, valid, reason, fetched_at
		FROM analysis_runs
		ORDER BY fetched_at DESC
		LIMIT ?`)

	var runs []Run
	if err := a.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return runs, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

func columns(v models.DataValue) (sql.NullFloat64, sql.NullString) {
	switch v.Kind {
	case models.Number:
		return sql.NullFloat64{Float64: v.Num, Valid: true}, sql.NullString{}
	case models.Text:
		return sql.NullFloat64{}, sql.NullString{String: v.Str, Valid: true}
	default:
		return sql.NullFloat64{}, sql.NullString{}
	}
}
