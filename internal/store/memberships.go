package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) UpsertMembership(ctx context.Context, troopID, userID uuid.UUID, role string, denID *uuid.UUID) (Membership, error) {
	var m Membership
	err := s.pool.QueryRow(ctx,
		`INSERT INTO memberships (troop_id, user_id, role, den_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (troop_id, user_id)
		 DO UPDATE SET role = EXCLUDED.role, den_id = EXCLUDED.den_id
		 RETURNING id, troop_id, user_id, den_id, role, created_at`,
		troopID, userID, role, denID,
	).Scan(&m.ID, &m.TroopID, &m.UserID, &m.DenID, &m.Role, &m.CreatedAt)
	if err != nil {
		return Membership{}, fmt.Errorf("upserting membership: %w", err)
	}
	return m, nil
}

func (s *Store) GetMembership(ctx context.Context, troopID, userID uuid.UUID) (Membership, error) {
	var m Membership
	err := s.pool.QueryRow(ctx,
		`SELECT id, troop_id, user_id, den_id, role, created_at
		 FROM memberships WHERE troop_id = $1 AND user_id = $2`,
		troopID, userID,
	).Scan(&m.ID, &m.TroopID, &m.UserID, &m.DenID, &m.Role, &m.CreatedAt)
	if err != nil {
		return Membership{}, fmt.Errorf("getting membership: %w", err)
	}
	return m, nil
}

func (s *Store) ListTroopMembers(ctx context.Context, troopID uuid.UUID, limit, offset int32) ([]Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.troop_id, m.user_id, m.den_id, m.role, m.created_at,
		        u.email, u.full_name
		 FROM memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.troop_id = $1
		 ORDER BY u.full_name
		 LIMIT $2 OFFSET $3`,
		troopID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing troop members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.TroopID, &m.UserID, &m.DenID, &m.Role, &m.CreatedAt, &m.Email, &m.FullName); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) CountTroopMembers(ctx context.Context, troopID uuid.UUID) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM memberships WHERE troop_id = $1`, troopID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting troop members: %w", err)
	}
	return n, nil
}

// The three linkage predicates below implement privileges.MembershipView.
// A user is always linked to themselves.

func (s *Store) SameHousehold(ctx context.Context, actor, target uuid.UUID) (bool, error) {
	if actor == target {
		return true, nil
	}
	var linked bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM household_members a
		   JOIN household_members b ON a.household_id = b.household_id
		   WHERE a.user_id = $1 AND b.user_id = $2
		 )`,
		actor, target).Scan(&linked)
	if err != nil {
		return false, fmt.Errorf("checking household linkage: %w", err)
	}
	return linked, nil
}

// Den and troop linkage are scoped to the troop that authorized the request.
// Sharing a den or troop elsewhere must not count.

func (s *Store) SameDen(ctx context.Context, troopID, actor, target uuid.UUID) (bool, error) {
	if actor == target {
		return true, nil
	}
	var linked bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM memberships a
		   JOIN memberships b ON a.den_id = b.den_id
		   WHERE a.troop_id = $1 AND b.troop_id = $1
		     AND a.user_id = $2 AND b.user_id = $3 AND a.den_id IS NOT NULL
		 )`,
		troopID, actor, target).Scan(&linked)
	if err != nil {
		return false, fmt.Errorf("checking den linkage: %w", err)
	}
	return linked, nil
}

func (s *Store) SameTroop(ctx context.Context, troopID, actor, target uuid.UUID) (bool, error) {
	if actor == target {
		return true, nil
	}
	var linked bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM memberships a
		   JOIN memberships b ON a.troop_id = b.troop_id
		   WHERE a.troop_id = $1 AND a.user_id = $2 AND b.user_id = $3
		 )`,
		troopID, actor, target).Scan(&linked)
	if err != nil {
		return false, fmt.Errorf("checking troop linkage: %w", err)
	}
	return linked, nil
}
