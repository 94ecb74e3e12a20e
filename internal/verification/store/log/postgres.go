package log

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"securevault/internal/verification/models"
)

// Postgres persists verification events durably. seq gives a total order
// that preserves insertion order even when verified_at timestamps collide.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a postgres-backed verification log.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the verification_events table when missing.
func (l *Postgres) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verification_events (
			seq         BIGSERIAL PRIMARY KEY,
			id          UUID NOT NULL,
			queried_id  TEXT NOT NULL,
			valid       BOOLEAN NOT NULL,
			verified_at TIMESTAMPTZ NOT NULL,
			snapshot    JSONB
		);
		CREATE INDEX IF NOT EXISTS verification_events_queried_id_idx ON verification_events (queried_id);
	`)
	if err != nil {
		return fmt.Errorf("migrate verification_events: %w", err)
	}
	return nil
}

func (l *Postgres) Append(ctx context.Context, event models.Event) error {
	var snapshot []byte
	if event.Certificate != nil {
		var err error
		snapshot, err = json.Marshal(event.Certificate)
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO verification_events (id, queried_id, valid, verified_at, snapshot)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID, event.QueriedID, event.Valid, event.VerifiedAt, snapshot)
	if err != nil {
		return fmt.Errorf("insert verification event: %w", err)
	}
	return nil
}

func (l *Postgres) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, queried_id, valid, verified_at, snapshot
		FROM verification_events
		ORDER BY seq DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query verification events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (l *Postgres) All(ctx context.Context) ([]models.Event, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, queried_id, valid, verified_at, snapshot
		FROM verification_events
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query verification events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var (
			event    models.Event
			snapshot []byte
		)
		if err := rows.Scan(&event.ID, &event.QueriedID, &event.Valid, &event.VerifiedAt, &snapshot); err != nil {
			return nil, fmt.Errorf("scan verification event: %w", err)
		}
		if len(snapshot) > 0 {
			event.Certificate = &models.Snapshot{}
			if err := json.Unmarshal(snapshot, event.Certificate); err != nil {
				return nil, fmt.Errorf("unmarshal snapshot: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification events: %w", err)
	}
	return events, nil
}
