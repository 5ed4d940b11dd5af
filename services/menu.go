package services

import (
	"context"
	"errors"
	"fmt"

	"meal-telegram/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the Postgres implementation of Catalog, SelectionStore, Ledger
// and CatalogImporter.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const vendorCols = `id, name, code, kind`

func scanVendor(row pgx.Row) (*models.Vendor, error) {
	var v models.Vendor
	var kind string
	if err := row.Scan(&v.ID, &v.Name, &v.Code, &kind); err != nil {
		return nil, notFound(err)
	}
	v.Kind = models.VendorKind(kind)
	return &v, nil
}

func (s *PGStore) ListVendors(ctx context.Context, kind models.VendorKind) ([]models.Vendor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+vendorCols+` FROM vendors
		WHERE $1 = '' OR kind = $1
		ORDER BY id`,
		string(kind),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, *v)
	}
	return vendors, rows.Err()
}

func (s *PGStore) VendorByID(ctx context.Context, id int64) (*models.Vendor, error) {
	return scanVendor(s.pool.QueryRow(ctx, `SELECT `+vendorCols+` FROM vendors WHERE id = $1`, id))
}

func (s *PGStore) VendorByName(ctx context.Context, name string) (*models.Vendor, error) {
	return scanVendor(s.pool.QueryRow(ctx, `SELECT `+vendorCols+` FROM vendors WHERE name = $1`, name))
}

func (s *PGStore) VendorByCode(ctx context.Context, code string) (*models.Vendor, error) {
	return scanVendor(s.pool.QueryRow(ctx, `SELECT `+vendorCols+` FROM vendors WHERE code = $1`, code))
}

func (s *PGStore) ListCategories(ctx context.Context, vendorID int64) ([]models.MenuCategory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, vendor_id, name, position FROM menu_categories
		WHERE vendor_id = $1
		ORDER BY position, id`,
		vendorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.MenuCategory
	for rows.Next() {
		var c models.MenuCategory
		if err := rows.Scan(&c.ID, &c.VendorID, &c.Name, &c.Position); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *PGStore) CategoryByName(ctx context.Context, vendorID int64, name string) (*models.MenuCategory, error) {
	var c models.MenuCategory
	err := s.pool.QueryRow(ctx, `
		SELECT id, vendor_id, name, position FROM menu_categories
		WHERE vendor_id = $1 AND name = $2
		ORDER BY position LIMIT 1`,
		vendorID, name,
	).Scan(&c.ID, &c.VendorID, &c.Name, &c.Position)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

const itemCols = `id, vendor_id, category_id, name, price, COALESCE(note, ''), code`

func scanItem(row pgx.Row) (*models.MenuItem, error) {
	var it models.MenuItem
	if err := row.Scan(&it.ID, &it.VendorID, &it.CategoryID, &it.Name, &it.Price, &it.Note, &it.Code); err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (s *PGStore) ListItems(ctx context.Context, categoryID int64) ([]models.MenuItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemCols+` FROM menu_items
		WHERE category_id = $1
		ORDER BY id`,
		categoryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *PGStore) ItemByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	return scanItem(s.pool.QueryRow(ctx, `SELECT `+itemCols+` FROM menu_items WHERE id = $1`, id))
}

func (s *PGStore) ItemByCode(ctx context.Context, code string) (*models.MenuItem, error) {
	return scanItem(s.pool.QueryRow(ctx, `SELECT `+itemCols+` FROM menu_items WHERE code = $1`, code))
}

// ItemByName returns the first item (import order) with this exact name at the vendor.
func (s *PGStore) ItemByName(ctx context.Context, vendorID int64, name string) (*models.MenuItem, error) {
	return scanItem(s.pool.QueryRow(ctx, `
		SELECT `+itemCols+` FROM menu_items
		WHERE vendor_id = $1 AND name = $2
		ORDER BY id LIMIT 1`,
		vendorID, name,
	))
}

// ImportCatalog writes parsed vendors in one transaction. A reset clears the
// ledger and the vendor-of-the-day table together with the old catalog.
func (s *PGStore) ImportCatalog(ctx context.Context, vendors []ImportedVendor, reset bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if reset {
		if _, err := tx.Exec(ctx, `TRUNCATE order_records, daily_selections, menu_items, menu_categories, vendors RESTART IDENTITY`); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	} else {
		var n int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM vendors`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrCatalogNotEmpty
		}
	}

	for _, v := range vendors {
		if !v.Kind.Valid() {
			return fmt.Errorf("vendor %s: invalid kind %q", v.Name, v.Kind)
		}
		var vendorID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO vendors (name, code, kind) VALUES ($1, $2, $3)
			RETURNING id`,
			v.Name, v.Code, string(v.Kind),
		).Scan(&vendorID)
		if err != nil {
			return fmt.Errorf("insert vendor %s: %w", v.Name, err)
		}
		for pos, c := range v.Categories {
			var catID int64
			err := tx.QueryRow(ctx, `
				INSERT INTO menu_categories (vendor_id, name, position) VALUES ($1, $2, $3)
				RETURNING id`,
				vendorID, c.Name, pos,
			).Scan(&catID)
			if err != nil {
				return fmt.Errorf("insert category %s/%s: %w", v.Name, c.Name, err)
			}
			for _, it := range c.Items {
				_, err := tx.Exec(ctx, `
					INSERT INTO menu_items (vendor_id, category_id, name, price, note, code)
					VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
					vendorID, catID, it.Name, it.Price, it.Note, it.Code,
				)
				if err != nil {
					return fmt.Errorf("insert item %s: %w", it.Code, err)
				}
			}
		}
	}
	return tx.Commit(ctx)
}

// CatalogEmpty reports whether no vendor has been imported yet.
func (s *PGStore) CatalogEmpty(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vendors)`).Scan(&exists)
	return !exists, err
}
