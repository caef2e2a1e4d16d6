package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txledger/internal/core"
	"txledger/internal/report"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "txledger.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

var errRunNotFound = errors.New("report run not found")

// listSnapshot returns the accounts saved for a run, ordered by client id.
func (r *SQLiteRepository) listSnapshot(ctx context.Context, runID uuid.UUID) ([]core.Account, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM report_runs WHERE id = ?`, runID.String()).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check run: %w", err)
	}
	if exists == 0 {
		return nil, errRunNotFound
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT client, available, held, total, locked
		 FROM account_snapshots WHERE run_id = ? ORDER BY client`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			client                 int64
			available, held, total string
			locked                 bool
		)
		if err := rows.Scan(&client, &available, &held, &total, &locked); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		a := core.Account{ID: core.ClientID(client), Locked: locked}
		if a.Available, err = decimal.NewFromString(available); err != nil {
			return nil, fmt.Errorf("client %d available: %w", client, err)
		}
		if a.Held, err = decimal.NewFromString(held); err != nil {
			return nil, fmt.Errorf("client %d held: %w", client, err)
		}
		if a.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("client %d total: %w", client, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	return out, nil
}

func TestSQLiteRepository_SaveAndListSnapshot(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	run := report.NewRun()
	accounts := []core.Account{
		{ID: 1, Available: decimal.RequireFromString("10.1234"), Held: decimal.Zero, Total: decimal.RequireFromString("10.1234")},
		{ID: 9, Available: decimal.RequireFromString("-2"), Held: decimal.RequireFromString("2"), Total: decimal.Zero, Locked: true},
	}
	require.NoError(t, repo.Emit(ctx, run, accounts))

	got, err := repo.listSnapshot(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range accounts {
		assert.Equal(t, accounts[i].ID, got[i].ID)
		assert.True(t, accounts[i].Available.Equal(got[i].Available))
		assert.True(t, accounts[i].Held.Equal(got[i].Held))
		assert.True(t, accounts[i].Total.Equal(got[i].Total))
		assert.Equal(t, accounts[i].Locked, got[i].Locked)
	}
}

func TestSQLiteRepository_EmptyRun(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	run := report.NewRun()
	require.NoError(t, repo.SaveSnapshot(ctx, run, nil))

	got, err := repo.listSnapshot(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRepository_UnknownRun(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.listSnapshot(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errRunNotFound)
}

func TestSQLiteRepository_DuplicateRunRejected(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	run := report.NewRun()
	accounts := []core.Account{core.NewAccount(1, decimal.NewFromInt(1))}
	require.NoError(t, repo.SaveSnapshot(ctx, run, accounts))
	require.Error(t, repo.SaveSnapshot(ctx, run, accounts))

	got, err := repo.listSnapshot(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1, "failed save must roll back")
}

func TestRunMigrations_Idempotent(t *testing.T) {
	_, path := newTestRepo(t)

	require.NoError(t, RunMigrations(path))

	version, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestNewSQLiteRepository_DirtySchema(t *testing.T) {
	repo, path := newTestRepo(t)
	_, err := repo.db.Exec(`UPDATE schema_migrations SET dirty = 1`)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, err = NewSQLiteRepository(path)
	require.ErrorIs(t, err, ErrDirtySchema)
	assert.Contains(t, err.Error(), "version 1")
}
