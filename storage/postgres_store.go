package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"pledge-insights/models"
	"pledge-insights/utils"
)

const householdBatchSize = 500

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// SnapshotStore persists dataset snapshots to PostgreSQL. Only raw records
// are stored; callers re-run enrichment on load.
type SnapshotStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewSnapshotStore opens a connection to PostgreSQL, retries the initial
// ping, runs schema migrations, and returns a ready-to-use store.
func NewSnapshotStore(ctx context.Context, dsn string, retry utils.RetryConfig, logger *utils.Logger) (*SnapshotStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	s := &SnapshotStore{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return s, nil
}

func (s *SnapshotStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			id            UUID         PRIMARY KEY,
			title         TEXT         NOT NULL,
			snapshot_date DATE         NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS snapshot_households (
			snapshot_id    UUID          NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			position       INTEGER       NOT NULL,
			age            INTEGER       NOT NULL,
			pledge_current NUMERIC(12,2) NOT NULL DEFAULT 0,
			pledge_prior   NUMERIC(12,2) NOT NULL DEFAULT 0,
			zip            VARCHAR(10)   NOT NULL DEFAULT '',
			PRIMARY KEY (snapshot_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_date ON snapshots(snapshot_date);
	`)
	return err
}

// Save inserts the snapshot and its records in one transaction. A missing
// ID is generated and CreatedAt is set on snap.
func (s *SnapshotStore) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if _, err := uuid.Parse(snap.ID); err != nil {
		return fmt.Errorf("postgres: snapshot id %q: %w", snap.ID, err)
	}
	snap.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := insertSnapshotQuery(snap)
	if err != nil {
		return fmt.Errorf("postgres: build snapshot insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: insert snapshot: %w", err)
	}

	for i := 0; i < len(snap.Records); i += householdBatchSize {
		end := i + householdBatchSize
		if end > len(snap.Records) {
			end = len(snap.Records)
		}
		query, args, err := insertHouseholdsQuery(snap.ID, i, snap.Records[i:end])
		if err != nil {
			return fmt.Errorf("postgres: build household insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert households: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	s.logger.Info("[postgres] Saved snapshot %s (%d households)", snap.ID, len(snap.Records))
	return nil
}

// Load returns the snapshot with its records in their original order.
func (s *SnapshotStore) Load(ctx context.Context, id string) (*models.Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("postgres: load %q: %w", id, ErrSnapshotNotFound)
	}

	query, args, err := selectSnapshotsQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build snapshot select: %w", err)
	}

	snap := &models.Snapshot{}
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&snap.ID, &snap.Title, &snap.SnapshotDate, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("postgres: load %q: %w", id, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: load %q: %w", id, err)
	}

	query, args, err = selectHouseholdsQuery(id)
	if err != nil {
		return nil, fmt.Errorf("postgres: build household select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch households: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.RawRecord
		if err := rows.Scan(&r.Age, &r.PledgeCurrent, &r.PledgePrior, &r.Zip); err != nil {
			return nil, fmt.Errorf("postgres: scan household: %w", err)
		}
		snap.Records = append(snap.Records, r)
	}
	return snap, rows.Err()
}

// List returns snapshot headers, newest snapshot date first. Records are
// not loaded.
func (s *SnapshotStore) List(ctx context.Context) ([]models.Snapshot, error) {
	query, args, err := selectSnapshotsQuery().
		OrderBy("snapshot_date DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build snapshot list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		if err := rows.Scan(&snap.ID, &snap.Title, &snap.SnapshotDate, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

func insertSnapshotQuery(snap *models.Snapshot) (string, []any, error) {
	return psql.Insert("snapshots").
		Columns("id", "title", "snapshot_date", "created_at").
		Values(snap.ID, snap.Title, snap.SnapshotDate, snap.CreatedAt).
		ToSql()
}

// insertHouseholdsQuery builds a multi-row insert. offset is the position of
// batch[0] within the snapshot.
func insertHouseholdsQuery(snapshotID string, offset int, batch []models.RawRecord) (string, []any, error) {
	q := psql.Insert("snapshot_households").
		Columns("snapshot_id", "position", "age", "pledge_current", "pledge_prior", "zip")
	for i, r := range batch {
		q = q.Values(snapshotID, offset+i, r.Age, r.PledgeCurrent, r.PledgePrior, r.Zip)
	}
	return q.ToSql()
}

func selectSnapshotsQuery() squirrel.SelectBuilder {
	return psql.Select("id", "title", "snapshot_date", "created_at").From("snapshots")
}

func selectHouseholdsQuery(snapshotID string) (string, []any, error) {
	return psql.Select("age", "pledge_current", "pledge_prior", "zip").
		From("snapshot_households").
		Where(squirrel.Eq{"snapshot_id": snapshotID}).
		OrderBy("position").
		ToSql()
}
