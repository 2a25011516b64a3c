// internal/bins/postgres.go
package bins

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PostgresStore persists the bin collection as one JSONB document per bin.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresStore creates a store over an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("smartbin/bins"),
	}
}

// EnsureSchema creates the bins table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bins (
			id TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create bins schema: %w", err)
	}
	return nil
}

// Load reads every persisted bin.
func (s *PostgresStore) Load(ctx context.Context) (Collection, error) {
	ctx, span := s.tracer.Start(ctx, "bins.load")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM bins`)
	if err != nil {
		return nil, fmt.Errorf("query bins: %w", err)
	}
	defer rows.Close()

	c := Collection{}
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan bin: %w", err)
		}
		bin := NewBin(id)
		if err := json.Unmarshal(data, bin); err != nil {
			return nil, fmt.Errorf("decode bin %s: %w", id, err)
		}
		bin.ID = id
		c[id] = bin
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bins: %w", err)
	}

	span.SetAttributes(attribute.Int("bins.loaded", len(c)))
	return c, nil
}

// Save writes the whole collection atomically: every bin is upserted and
// bins absent from the snapshot are deleted.
func (s *PostgresStore) Save(ctx context.Context, c Collection) error {
	ctx, span := s.tracer.Start(ctx, "bins.save",
		trace.WithAttributes(attribute.Int("bins.count", len(c))),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bins WHERE NOT (id = ANY($1))`, pq.Array(ids),
	); err != nil {
		return fmt.Errorf("prune bins: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bins (id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for id, bin := range c {
		data, err := json.Marshal(bin)
		if err != nil {
			return fmt.Errorf("encode bin %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, data, now); err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				return fmt.Errorf("upsert bin %s (%s): %w", id, pqErr.Code, err)
			}
			return fmt.Errorf("upsert bin %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
