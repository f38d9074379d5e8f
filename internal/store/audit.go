package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) InsertAuditEvent(ctx context.Context, e AuditEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_events
		   (actor_id, troop_id, action, privilege_code, required_level, actual_scope, target_owner_id, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ActorID, e.TroopID, e.Action, e.PrivilegeCode, e.RequiredLevel, e.ActualScope, e.TargetOwnerID, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns one troop's authorization trail, newest first.
// Events recorded outside any troop context stay out of every troop's view.
func (s *Store) ListAuditEvents(ctx context.Context, troopID uuid.UUID, limit, offset int32) ([]AuditEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, actor_id, troop_id, action, privilege_code, required_level, actual_scope,
		        target_owner_id, occurred_at, created_at
		 FROM audit_events
		 WHERE troop_id = $1
		 ORDER BY occurred_at DESC
		 LIMIT $2 OFFSET $3`,
		troopID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		if err := rows.Scan(&e.ID, &e.ActorID, &e.TroopID, &e.Action, &e.PrivilegeCode, &e.RequiredLevel,
			&e.ActualScope, &e.TargetOwnerID, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) CountAuditEvents(ctx context.Context, troopID uuid.UUID) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_events WHERE troop_id = $1`, troopID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting audit events: %w", err)
	}
	return n, nil
}
