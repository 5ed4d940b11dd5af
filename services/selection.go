package services

import (
	"context"
	"errors"

	"meal-telegram/models"

	"github.com/jackc/pgx/v5"
)

func (s *PGStore) PutSelection(ctx context.Context, sel models.DailySelection) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_selections (date, meal_slot, kind, vendor_id, updated_at)
		VALUES ($1::date, $2, $3, $4, now())
		ON CONFLICT (date, meal_slot, kind) DO UPDATE SET
			vendor_id = EXCLUDED.vendor_id,
			updated_at = now()`,
		sel.Date, string(sel.Slot), string(sel.Kind), sel.VendorID,
	)
	return err
}

func (s *PGStore) GetSelection(ctx context.Context, date string, slot models.MealSlot, kind models.VendorKind) (int64, bool, error) {
	var vendorID int64
	err := s.pool.QueryRow(ctx, `
		SELECT vendor_id FROM daily_selections
		WHERE date = $1::date AND meal_slot = $2 AND kind = $3`,
		date, string(slot), string(kind),
	).Scan(&vendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return vendorID, true, nil
}

func (s *PGStore) ListSelections(ctx context.Context, date string) ([]models.DailySelection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), meal_slot, kind, vendor_id FROM daily_selections
		WHERE date = $1::date
		ORDER BY meal_slot DESC, kind DESC`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sels []models.DailySelection
	for rows.Next() {
		var sel models.DailySelection
		var slot, kind string
		if err := rows.Scan(&sel.Date, &slot, &kind, &sel.VendorID); err != nil {
			return nil, err
		}
		sel.Slot, sel.Kind = models.MealSlot(slot), models.VendorKind(kind)
		sels = append(sels, sel)
	}
	return sels, rows.Err()
}
