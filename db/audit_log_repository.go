package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

type AuditLogRepository struct {
	db *DB
}

func NewAuditLogRepository(db *DB) AuditLogRepository {
	if db == nil {
		panic("db is nil")
	}
	return AuditLogRepository{
		db: db,
	}
}

// Append stores a published domain event. Redelivered events are ignored.
func (r AuditLogRepository) Append(ctx context.Context, header entities.EventHeader, eventName string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling event %w", err)
	}

	_, err = r.db.Conn.ExecContext(ctx, `
		INSERT INTO
			audit_log (event_id, published_at, event_name, event_payload)
		VALUES
			($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
	`, header.ID, header.PublishedAt, eventName, payload)
	if err != nil {
		return fmt.Errorf("could not append %s to audit log: %w", eventName, err)
	}

	return nil
}

func (r AuditLogRepository) ListByName(ctx context.Context, eventName string) ([]entities.AuditEntry, error) {
	var entries []entities.AuditEntry
	err := r.db.Conn.SelectContext(ctx, &entries, `
		SELECT event_id, published_at, event_name, event_payload
		FROM audit_log
		WHERE event_name = $1
		ORDER BY published_at
	`, eventName)
	if err != nil {
		return nil, fmt.Errorf("could not list audit log: %w", err)
	}

	return entries, nil
}
