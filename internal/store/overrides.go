package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) ListOverridesForMembership(ctx context.Context, membershipID uuid.UUID) ([]PrivilegeOverride, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, membership_id, privilege_code, scope, created_by, created_at
		 FROM privilege_overrides
		 WHERE membership_id = $1
		 ORDER BY created_at`,
		membershipID)
	if err != nil {
		return nil, fmt.Errorf("listing overrides: %w", err)
	}
	defer rows.Close()

	var overrides []PrivilegeOverride
	for rows.Next() {
		var o PrivilegeOverride
		if err := rows.Scan(&o.ID, &o.MembershipID, &o.PrivilegeCode, &o.Scope, &o.CreatedBy, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning override: %w", err)
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (s *Store) UpsertOverride(ctx context.Context, membershipID uuid.UUID, privilegeCode, scope string, createdBy uuid.UUID) (PrivilegeOverride, error) {
	var o PrivilegeOverride
	err := s.pool.QueryRow(ctx,
		`INSERT INTO privilege_overrides (membership_id, privilege_code, scope, created_by)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (membership_id, privilege_code)
		 DO UPDATE SET scope = EXCLUDED.scope, created_by = EXCLUDED.created_by, created_at = now()
		 RETURNING id, membership_id, privilege_code, scope, created_by, created_at`,
		membershipID, privilegeCode, scope, createdBy,
	).Scan(&o.ID, &o.MembershipID, &o.PrivilegeCode, &o.Scope, &o.CreatedBy, &o.CreatedAt)
	if err != nil {
		return PrivilegeOverride{}, fmt.Errorf("upserting override: %w", err)
	}
	return o, nil
}

func (s *Store) DeleteOverride(ctx context.Context, membershipID uuid.UUID, privilegeCode string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM privilege_overrides
		 WHERE membership_id = $1 AND privilege_code = $2`,
		membershipID, privilegeCode)
	if err != nil {
		return fmt.Errorf("deleting override: %w", err)
	}
	return nil
}
