package registry

import (
	"context"
	"database/sql"
	"fmt"
)

// SnapshotStore persists the parsed registry in flat form so a later boot can
// serve records without re-ingesting the source document. The snapshot is a
// cache of the last good parse, never a source of truth.
type SnapshotStore interface {
	Save(ctx context.Context, establishments []Establishment) error
	Load(ctx context.Context) ([]Establishment, error)
}

// PostgresSnapshotStore stores the registry in a single flat table, replaced
// wholesale on every save.
type PostgresSnapshotStore struct {
	db *sql.DB
}

func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

// EnsureSchema creates the snapshot table when it does not exist yet.
func (s *PostgresSnapshotStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS halal_establishments (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			address    TEXT NOT NULL DEFAULT '',
			cert_type  TEXT NOT NULL DEFAULT '',
			reg_num    TEXT NOT NULL DEFAULT '',
			parsed_at  TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

func (s *PostgresSnapshotStore) Save(ctx context.Context, establishments []Establishment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM halal_establishments`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO halal_establishments (id, name, address, cert_type, reg_num, parsed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range establishments {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, e.Address, e.CertType, e.RegNum, e.ParsedAt); err != nil {
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *PostgresSnapshotStore) Load(ctx context.Context) ([]Establishment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, cert_type, reg_num, parsed_at
		FROM halal_establishments`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var establishments []Establishment
	for rows.Next() {
		var e Establishment
		if err := rows.Scan(&e.ID, &e.Name, &e.Address, &e.CertType, &e.RegNum, &e.ParsedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		establishments = append(establishments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return establishments, nil
}
