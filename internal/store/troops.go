package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) CreateOrganization(ctx context.Context, name string) (Organization, error) {
	var o Organization
	err := s.pool.QueryRow(ctx,
		`INSERT INTO organizations (name) VALUES ($1)
		 RETURNING id, name, created_at`,
		name,
	).Scan(&o.ID, &o.Name, &o.CreatedAt)
	if err != nil {
		return Organization{}, fmt.Errorf("creating organization: %w", err)
	}
	return o, nil
}

func (s *Store) CreateTroop(ctx context.Context, organizationID uuid.UUID, name string) (Troop, error) {
	var t Troop
	err := s.pool.QueryRow(ctx,
		`INSERT INTO troops (organization_id, name) VALUES ($1, $2)
		 RETURNING id, organization_id, name, created_at`,
		organizationID, name,
	).Scan(&t.ID, &t.OrganizationID, &t.Name, &t.CreatedAt)
	if err != nil {
		return Troop{}, fmt.Errorf("creating troop: %w", err)
	}
	return t, nil
}

func (s *Store) GetTroop(ctx context.Context, id uuid.UUID) (Troop, error) {
	var t Troop
	err := s.pool.QueryRow(ctx,
		`SELECT id, organization_id, name, created_at FROM troops WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.OrganizationID, &t.Name, &t.CreatedAt)
	if err != nil {
		return Troop{}, fmt.Errorf("getting troop: %w", err)
	}
	return t, nil
}

func (s *Store) ListTroops(ctx context.Context) ([]Troop, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, organization_id, name, created_at FROM troops ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing troops: %w", err)
	}
	defer rows.Close()

	var troops []Troop
	for rows.Next() {
		var t Troop
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning troop: %w", err)
		}
		troops = append(troops, t)
	}
	return troops, rows.Err()
}

func (s *Store) GetOrCreateDen(ctx context.Context, troopID uuid.UUID, name string) (Den, error) {
	var d Den
	err := s.pool.QueryRow(ctx,
		`INSERT INTO dens (troop_id, name) VALUES ($1, $2)
		 ON CONFLICT (troop_id, name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, troop_id, name`,
		troopID, name,
	).Scan(&d.ID, &d.TroopID, &d.Name)
	if err != nil {
		return Den{}, fmt.Errorf("get-or-create den: %w", err)
	}
	return d, nil
}

func (s *Store) ListDens(ctx context.Context, troopID uuid.UUID) ([]Den, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, troop_id, name FROM dens WHERE troop_id = $1 ORDER BY name`,
		troopID)
	if err != nil {
		return nil, fmt.Errorf("listing dens: %w", err)
	}
	defer rows.Close()

	var dens []Den
	for rows.Next() {
		var d Den
		if err := rows.Scan(&d.ID, &d.TroopID, &d.Name); err != nil {
			return nil, fmt.Errorf("scanning den: %w", err)
		}
		dens = append(dens, d)
	}
	return dens, rows.Err()
}
