package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"meal-telegram/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Integration test against a migrated database (run `meal-telegram migrate` first).
// Skipped unless TEST_DATABASE_URL is set. The catalog is reset.
func TestPGStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	s := NewPGStore(pool)

	vendors := []ImportedVendor{
		{Name: "A", Kind: models.KindFood, Categories: []ImportedCategory{
			{Name: "便當", Items: []ImportedItem{{Name: "雞腿便當", Price: 120}, {Name: "排骨便當", Price: 110, Note: "加滷蛋"}}},
		}},
		{Name: "B", Kind: models.KindDrink, Categories: []ImportedCategory{
			{Name: "茶", Items: []ImportedItem{{Name: "紅茶", Price: 30}}},
		}},
	}
	if err := AssignCodes(vendors); err != nil {
		t.Fatal(err)
	}
	if err := s.ImportCatalog(ctx, vendors, true); err != nil {
		t.Fatalf("ImportCatalog: %v", err)
	}
	if err := s.ImportCatalog(ctx, vendors, false); !errors.Is(err, ErrCatalogNotEmpty) {
		t.Errorf("import over non-empty catalog err = %v, want ErrCatalogNotEmpty", err)
	}

	item, err := s.ItemByCode(ctx, "AA02")
	if err != nil || item.Name != "排骨便當" || item.Note != "加滷蛋" {
		t.Fatalf("ItemByCode(AA02) = %+v, %v", item, err)
	}
	if _, err := s.ItemByCode(ctx, "ZZ99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ItemByCode(ZZ99) err = %v, want ErrNotFound", err)
	}
	byName, err := s.ItemByName(ctx, item.VendorID, "雞腿便當")
	if err != nil || byName.Code != "AA01" {
		t.Errorf("ItemByName = %+v, %v", byName, err)
	}
	drinks, _ := s.ListVendors(ctx, models.KindDrink)
	if len(drinks) != 1 || drinks[0].Code != "AB" {
		t.Errorf("drink vendors = %+v", drinks)
	}

	date := time.Now().Format("2006-01-02")
	reg := NewRegistry(s, s)
	if err := reg.SetFoodVendor(ctx, date, models.SlotLunch, item.VendorID); err != nil {
		t.Fatalf("SetFoodVendor: %v", err)
	}
	if err := reg.SetFoodVendor(ctx, date, models.SlotLunch, item.VendorID); err != nil {
		t.Fatalf("SetFoodVendor twice: %v", err)
	}
	if v, ok, err := reg.GetFoodVendor(ctx, date, models.SlotLunch); err != nil || !ok || v.Name != "A" {
		t.Errorf("GetFoodVendor = %v, %v, %v", v, ok, err)
	}

	user := fmt.Sprintf("it-%d", time.Now().UnixNano())
	for _, qty := range []int{2, 1} {
		_, err := s.RecordOrder(ctx, models.CreateOrderInput{
			PlatformUserID: user, DisplayName: "tester", Date: date, Slot: models.SlotLunch,
			ItemID: byName.ID, Quantity: qty,
		})
		if err != nil {
			t.Fatalf("RecordOrder: %v", err)
		}
	}
	lines, err := s.ListOrders(ctx, date, models.SlotLunch)
	if err != nil || len(lines) != 2 {
		t.Fatalf("ListOrders = %d lines, %v, want 2", len(lines), err)
	}
	if lines[0].Quantity != 2 || lines[0].Subtotal() != 240 || lines[0].DisplayName != "tester" {
		t.Errorf("first line = %+v", lines[0])
	}
	u, err := s.UserByPlatformID(ctx, user)
	if err != nil || u.DisplayName != "tester" {
		t.Errorf("UserByPlatformID = %+v, %v", u, err)
	}
}
