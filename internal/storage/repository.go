package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"txledger/internal/core"
	applog "txledger/internal/log"
	"txledger/internal/report"

	_ "modernc.org/sqlite"
)

var ErrDirtySchema = errors.New("database schema is dirty")

// SQLiteRepository exports final account snapshots to a SQLite database.
// Each run is stored under its own id; existing runs are never modified.
type SQLiteRepository struct {
	db *sql.DB
}

var _ report.Sink = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, dirty, err := SchemaVersion(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	if dirty {
		db.Close()
		return nil, fmt.Errorf("%w at version %d: fix it with the migrate CLI before exporting", ErrDirtySchema, version)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Name() string { return "sqlite" }

// Emit implements report.Sink by saving the snapshot in a single transaction.
func (r *SQLiteRepository) Emit(ctx context.Context, run report.Run, accounts []core.Account) error {
	return r.SaveSnapshot(ctx, run, accounts)
}

// SaveSnapshot stores every account of a run atomically.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, run report.Run, accounts []core.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO report_runs (id, generated_at, accounts) VALUES (?, ?, ?)`,
		run.ID.String(), run.GeneratedAt, len(accounts))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO account_snapshots (run_id, client, available, held, total, locked)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range accounts {
		_, err := stmt.ExecContext(ctx,
			run.ID.String(),
			int64(a.ID),
			a.Available.String(),
			a.Held.String(),
			a.Total.String(),
			a.Locked)
		if err != nil {
			return fmt.Errorf("insert client %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentStorage).InfoContext(ctx,
		"Account snapshot saved to SQLite", "accounts", len(accounts))

	return nil
}
