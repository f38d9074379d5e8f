package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sales (troop_id, scout_id, recorded_by, item, boxes, amount_cents)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, recorded_at`,
		sale.TroopID, sale.ScoutID, sale.RecordedBy, sale.Item, sale.Boxes, sale.AmountCents,
	).Scan(&sale.ID, &sale.RecordedAt)
	if err != nil {
		return Sale{}, fmt.Errorf("inserting sale: %w", err)
	}
	return sale, nil
}

func (s *Store) ListSalesByScout(ctx context.Context, scoutID uuid.UUID, limit, offset int32) ([]Sale, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, troop_id, scout_id, recorded_by, item, boxes, amount_cents, recorded_at
		 FROM sales
		 WHERE scout_id = $1
		 ORDER BY recorded_at DESC
		 LIMIT $2 OFFSET $3`,
		scoutID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.TroopID, &sale.ScoutID, &sale.RecordedBy,
			&sale.Item, &sale.Boxes, &sale.AmountCents, &sale.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Store) CountSalesByScout(ctx context.Context, scoutID uuid.UUID) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sales WHERE scout_id = $1`, scoutID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting sales: %w", err)
	}
	return n, nil
}
