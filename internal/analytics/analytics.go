// Package analytics is a fire-and-forget event sink. Events never
// affect control flow: a failed insert is logged and dropped.
package analytics

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink records a named event with a flat attribute map.
type Sink interface {
	Log(ctx context.Context, name string, attrs map[string]string)
}

// PgSink appends events to the Postgres events table.
//
//	CREATE TABLE events (
//	    id         uuid PRIMARY KEY,
//	    name       text NOT NULL,
//	    attributes jsonb,
//	    created_at timestamptz NOT NULL DEFAULT now()
//	);
type PgSink struct {
	pool *pgxpool.Pool
}

func NewPgSink(pool *pgxpool.Pool) *PgSink {
	return &PgSink{pool: pool}
}

func (s *PgSink) Log(ctx context.Context, name string, attrs map[string]string) {
	payload, err := json.Marshal(attrs)
	if err != nil {
		log.Printf("analytics: marshal attrs for %s: %v", name, err)
		payload = nil
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO events (id, name, attributes)
		VALUES ($1, $2, $3)
	`, uuid.New(), name, payload)
	if err != nil {
		log.Printf("analytics: insert event %s: %v", name, err)
	}
}

// NopSink discards everything. Used when no Postgres DSN is configured
// and in tests.
type NopSink struct{}

func (NopSink) Log(ctx context.Context, name string, attrs map[string]string) {}
