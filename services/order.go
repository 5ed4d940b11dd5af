package services

import (
	"context"
	"fmt"

	"meal-telegram/models"
)

// RecordOrder upserts the user and appends the order record in one transaction.
func (s *PGStore) RecordOrder(ctx context.Context, in models.CreateOrderInput) (int64, error) {
	if in.Quantity <= 0 {
		return 0, fmt.Errorf("quantity must be > 0")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	userID, err := upsertUser(ctx, tx, in.PlatformUserID, in.DisplayName)
	if err != nil {
		return 0, fmt.Errorf("upsert user: %w", err)
	}
	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO order_records (user_id, date, meal_slot, menu_item_id, quantity, note)
		VALUES ($1, $2::date, $3, $4, $5, NULLIF($6, ''))
		RETURNING id`,
		userID, in.Date, string(in.Slot), in.ItemID, in.Quantity, in.Note,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, tx.Commit(ctx)
}

func (s *PGStore) ListOrders(ctx context.Context, date string, slot models.MealSlot) ([]models.OrderLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.id, u.id, COALESCE(u.display_name, ''), i.vendor_id, i.id, i.code, i.name, i.price,
			o.quantity, COALESCE(o.note, ''), o.created_at
		FROM order_records o
		JOIN users u ON u.id = o.user_id
		JOIN menu_items i ON i.id = o.menu_item_id
		WHERE o.date = $1::date AND o.meal_slot = $2
		ORDER BY o.id`,
		date, string(slot),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.RecordID, &l.UserID, &l.DisplayName, &l.VendorID, &l.ItemID, &l.ItemCode,
			&l.ItemName, &l.Price, &l.Quantity, &l.Note, &l.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
