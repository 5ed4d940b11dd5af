package services

import (
	"context"
	"strings"
	"testing"

	"meal-telegram/models"
)

const day = "2024-05-06"

type reportFixture struct {
	store    *MemStore
	registry *Registry
	reporter *Reporter
	bento    models.MenuItem // AA01, 120
	rice     models.MenuItem // AA02, 80
	tea      models.MenuItem // AB01, 30
	food     models.Vendor
	drink    models.Vendor
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	s := NewMemStore()
	f := &reportFixture{store: s}
	f.food = s.AddVendor("A", models.KindFood)
	f.drink = s.AddVendor("B", models.KindDrink)
	bento := s.AddCategory(f.food.ID, "便當")
	f.bento = s.AddItem(bento.ID, "雞腿便當", 120, "")
	f.rice = s.AddItem(bento.ID, "滷肉飯", 80, "")
	tea := s.AddCategory(f.drink.ID, "茶")
	f.tea = s.AddItem(tea.ID, "紅茶", 30, "")
	f.registry = NewRegistry(s, s)
	f.reporter = NewReporter(s, f.registry, s)
	return f
}

func (f *reportFixture) order(t *testing.T, user, name string, item models.MenuItem, qty int, note string) {
	t.Helper()
	_, err := f.store.RecordOrder(context.Background(), models.CreateOrderInput{
		PlatformUserID: user, DisplayName: name, Date: day, Slot: models.SlotLunch,
		ItemID: item.ID, Quantity: qty, Note: note,
	})
	if err != nil {
		t.Fatalf("RecordOrder: %v", err)
	}
}

func TestReportSingleItemExample(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	if err := f.registry.SetFoodVendor(ctx, day, models.SlotLunch, f.food.ID); err != nil {
		t.Fatal(err)
	}
	if f.bento.Code != "AA01" {
		t.Fatalf("bento code = %q, want AA01", f.bento.Code)
	}
	f.order(t, "u1", "alice", f.bento, 2, "")

	rep, err := f.reporter.Report(ctx, day, models.SlotLunch, models.KindFood)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.Status != ReportOK || rep.GrandTotal != 240 {
		t.Fatalf("Report = %s total %d, want ok total 240", rep.Status, rep.GrandTotal)
	}
	text := rep.Text()
	if !strings.Contains(text, "AA01 雞腿便當 ×2 = $240") {
		t.Errorf("report text missing line: %s", text)
	}
	if !strings.Contains(text, "總金額：$240") {
		t.Errorf("report text missing total: %s", text)
	}
}

func TestReportTwoUsersSameItem(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	_ = f.registry.SetFoodVendor(ctx, day, models.SlotLunch, f.food.ID)
	f.order(t, "u2", "bob", f.bento, 1, "")
	f.order(t, "u1", "alice", f.bento, 3, "")

	rep, err := f.reporter.Report(ctx, day, models.SlotLunch, models.KindFood)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Vendors) != 1 || len(rep.Vendors[0].Users) != 2 {
		t.Fatalf("report shape = %+v, want 1 vendor with 2 users", rep.Vendors)
	}
	users := rep.Vendors[0].Users
	if users[0].DisplayName != "alice" || users[1].DisplayName != "bob" {
		t.Errorf("user order = %q, %q, want alice, bob", users[0].DisplayName, users[1].DisplayName)
	}
	if users[0].Lines[0].Subtotal() != 360 || users[1].Lines[0].Subtotal() != 120 {
		t.Errorf("subtotals = %d, %d, want 360, 120", users[0].Lines[0].Subtotal(), users[1].Lines[0].Subtotal())
	}
	if rep.GrandTotal != 480 {
		t.Errorf("GrandTotal = %d, want 480", rep.GrandTotal)
	}
}

func TestReportOrdering(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	_ = f.registry.SetFoodVendor(ctx, day, models.SlotLunch, f.food.ID)
	_ = f.registry.SetDrinkVendor(ctx, day, models.SlotLunch, f.drink.ID)
	// drink ordered first; vendors must still follow catalog order
	f.order(t, "u1", "carol", f.tea, 1, "甜度半糖 冰塊少冰")
	f.order(t, "u1", "carol", f.rice, 1, "")
	f.order(t, "u1", "carol", f.bento, 1, "")
	f.order(t, "u9", "", f.bento, 1, "")

	rep, err := f.reporter.Report(ctx, day, models.SlotLunch, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Vendors) != 2 || rep.Vendors[0].Vendor.ID != f.food.ID || rep.Vendors[1].Vendor.ID != f.drink.ID {
		t.Fatalf("vendor order wrong: %+v", rep.Vendors)
	}
	food := rep.Vendors[0]
	if food.Users[0].DisplayName != "" || food.Users[1].DisplayName != "carol" {
		t.Errorf("users = %q, %q, want unnamed user first", food.Users[0].DisplayName, food.Users[1].DisplayName)
	}
	carol := food.Users[1]
	if carol.Lines[0].ItemID != f.rice.ID || carol.Lines[1].ItemID != f.bento.ID {
		t.Errorf("lines not in ledger order: %+v", carol.Lines)
	}
	if rep.GrandTotal != 30+80+120+120 {
		t.Errorf("GrandTotal = %d, want 350", rep.GrandTotal)
	}
	text := rep.Text()
	if !strings.Contains(text, "(未知)：") {
		t.Errorf("unnamed user not rendered as (未知): %s", text)
	}
	if !strings.Contains(text, "（甜度半糖 冰塊少冰）") {
		t.Errorf("drink note missing: %s", text)
	}
	if strings.Index(text, "【A】") > strings.Index(text, "【B】") {
		t.Errorf("vendor A should render before B: %s", text)
	}

	drinkOnly, _ := f.reporter.Report(ctx, day, models.SlotLunch, models.KindDrink)
	if drinkOnly.GrandTotal != 30 || len(drinkOnly.Vendors) != 1 {
		t.Errorf("drink filter = %+v", drinkOnly)
	}
}

func TestReportNoRecordsVersusNotConfigured(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	rep, err := f.reporter.Report(ctx, day, models.SlotLunch, models.KindFood)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != ReportVendorNotConfigured {
		t.Errorf("status without selection = %s, want %s", rep.Status, ReportVendorNotConfigured)
	}

	_ = f.registry.SetFoodVendor(ctx, day, models.SlotLunch, f.food.ID)
	rep, _ = f.reporter.Report(ctx, day, models.SlotLunch, models.KindFood)
	if rep.Status != ReportNoRecords {
		t.Errorf("status with selection and no orders = %s, want %s", rep.Status, ReportNoRecords)
	}
	if rep.Text() == "" || strings.Contains(rep.Text(), "總金額") {
		t.Errorf("no-records text = %q", rep.Text())
	}

	// food configured, drink filter has neither records nor a vendor
	rep, _ = f.reporter.Report(ctx, day, models.SlotLunch, models.KindDrink)
	if rep.Status != ReportVendorNotConfigured {
		t.Errorf("drink status = %s, want %s", rep.Status, ReportVendorNotConfigured)
	}
	rep, _ = f.reporter.Report(ctx, day, models.SlotLunch, "")
	if rep.Status != ReportNoRecords {
		t.Errorf("all-kinds status = %s, want %s", rep.Status, ReportNoRecords)
	}
}

func TestSpend(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	f.order(t, "u2", "bob", f.tea, 2, "")
	f.order(t, "u1", "alice", f.bento, 1, "")
	f.order(t, "u2", "bob", f.rice, 1, "")

	sp, err := f.reporter.Spend(ctx, day, models.SlotLunch)
	if err != nil {
		t.Fatal(err)
	}
	if len(sp.Users) != 2 || sp.Users[0].DisplayName != "alice" || sp.Users[1].Total != 140 {
		t.Errorf("Spend users = %+v", sp.Users)
	}
	if sp.GrandTotal != 260 {
		t.Errorf("GrandTotal = %d, want 260", sp.GrandTotal)
	}
	if !strings.Contains(sp.Text(), "bob：$140") {
		t.Errorf("spend text = %s", sp.Text())
	}

	empty, _ := f.reporter.Spend(ctx, day, models.SlotDinner)
	if !strings.Contains(empty.Text(), "今日尚無點餐紀錄") {
		t.Errorf("empty spend text = %s", empty.Text())
	}
}
