package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"meal-telegram/lang"
	"meal-telegram/models"
)

// Ledger is the append-only order store.
type Ledger interface {
	// RecordOrder creates the user on first use and appends one order record.
	RecordOrder(ctx context.Context, in models.CreateOrderInput) (int64, error)
	// ListOrders returns the records of (date, slot) in insertion order.
	ListOrders(ctx context.Context, date string, slot models.MealSlot) ([]models.OrderLine, error)
}

type ReportStatus string

const (
	ReportOK                  ReportStatus = "ok"
	ReportNoRecords           ReportStatus = "no_records"
	ReportVendorNotConfigured ReportStatus = "vendor_not_configured"
)

type Report struct {
	Date       string
	Slot       models.MealSlot
	Kind       models.VendorKind // empty means food and drink
	Status     ReportStatus
	Vendors    []VendorReport
	GrandTotal int64
}

type VendorReport struct {
	Vendor models.Vendor
	Users  []UserReport
	Total  int64
}

type UserReport struct {
	UserID      int64
	DisplayName string
	Lines       []models.OrderLine
	Total       int64
}

type Reporter struct {
	catalog  Catalog
	registry *Registry
	ledger   Ledger
}

func NewReporter(catalog Catalog, registry *Registry, ledger Ledger) *Reporter {
	return &Reporter{catalog: catalog, registry: registry, ledger: ledger}
}

// Report groups the ledger of (date, slot) by vendor, then user, then item.
// Vendors follow catalog order, users sort by display name, and lines keep
// ledger order.
func (r *Reporter) Report(ctx context.Context, date string, slot models.MealSlot, kind models.VendorKind) (*Report, error) {
	rep := &Report{Date: date, Slot: slot, Kind: kind, Status: ReportOK}
	vendors, err := r.catalog.ListVendors(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	lines, err := r.ledger.ListOrders(ctx, date, slot)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	byVendor := make(map[int64][]models.OrderLine)
	for _, l := range lines {
		byVendor[l.VendorID] = append(byVendor[l.VendorID], l)
	}
	for _, v := range vendors {
		vl := byVendor[v.ID]
		if len(vl) == 0 {
			continue
		}
		vr := VendorReport{Vendor: v, Users: groupByUser(vl)}
		for _, u := range vr.Users {
			vr.Total += u.Total
		}
		rep.GrandTotal += vr.Total
		rep.Vendors = append(rep.Vendors, vr)
	}
	if len(rep.Vendors) > 0 {
		return rep, nil
	}

	configured, err := r.configured(ctx, date, slot, kind)
	if err != nil {
		return nil, err
	}
	if configured {
		rep.Status = ReportNoRecords
	} else {
		rep.Status = ReportVendorNotConfigured
	}
	return rep, nil
}

func (r *Reporter) configured(ctx context.Context, date string, slot models.MealSlot, kind models.VendorKind) (bool, error) {
	kinds := []models.VendorKind{kind}
	if kind == "" {
		kinds = []models.VendorKind{models.KindFood, models.KindDrink}
	}
	for _, k := range kinds {
		_, ok, err := r.registry.Get(ctx, date, slot, k)
		if err != nil {
			return false, fmt.Errorf("vendor of the day: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func groupByUser(lines []models.OrderLine) []UserReport {
	idx := make(map[int64]int)
	var users []UserReport
	for _, l := range lines {
		i, ok := idx[l.UserID]
		if !ok {
			i = len(users)
			idx[l.UserID] = i
			users = append(users, UserReport{UserID: l.UserID, DisplayName: l.DisplayName})
		}
		users[i].Lines = append(users[i].Lines, l)
		users[i].Total += l.Subtotal()
	}
	sort.SliceStable(users, func(a, b int) bool {
		if users[a].DisplayName != users[b].DisplayName {
			return users[a].DisplayName < users[b].DisplayName
		}
		return users[a].UserID < users[b].UserID
	})
	return users
}

func displayName(name string) string {
	if name == "" {
		return lang.T("unknown_user")
	}
	return name
}

// Text renders the report as a chat reply.
func (rep *Report) Text() string {
	slot, kind := SlotLabel(rep.Slot), KindLabel(rep.Kind)
	switch rep.Status {
	case ReportNoRecords:
		return lang.T("report_no_records", slot, kind)
	case ReportVendorNotConfigured:
		return lang.T("report_not_configured", slot, VendorKindLabel(rep.Kind))
	}
	var b strings.Builder
	b.WriteString(lang.T("report_header", slot, kind))
	for _, v := range rep.Vendors {
		fmt.Fprintf(&b, "\n\n【%s】", v.Vendor.Name)
		for _, u := range v.Users {
			fmt.Fprintf(&b, "\n%s：", displayName(u.DisplayName))
			for _, l := range u.Lines {
				fmt.Fprintf(&b, "\n  %s %s ×%d = $%d", l.ItemCode, l.ItemName, l.Quantity, l.Subtotal())
				if l.Note != "" {
					fmt.Fprintf(&b, "（%s）", l.Note)
				}
			}
		}
	}
	b.WriteString("\n\n")
	b.WriteString(lang.T("report_total", rep.GrandTotal))
	return b.String()
}

type Spend struct {
	Date       string
	Slot       models.MealSlot
	Users      []UserSpend
	GrandTotal int64
}

type UserSpend struct {
	UserID      int64
	DisplayName string
	Total       int64
}

// Spend totals each user's orders of (date, slot) across all vendors.
func (r *Reporter) Spend(ctx context.Context, date string, slot models.MealSlot) (*Spend, error) {
	lines, err := r.ledger.ListOrders(ctx, date, slot)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	sp := &Spend{Date: date, Slot: slot}
	for _, u := range groupByUser(lines) {
		sp.Users = append(sp.Users, UserSpend{UserID: u.UserID, DisplayName: u.DisplayName, Total: u.Total})
		sp.GrandTotal += u.Total
	}
	return sp, nil
}

func (sp *Spend) Text() string {
	var b strings.Builder
	b.WriteString(lang.T("spend_header", SlotLabel(sp.Slot)))
	if len(sp.Users) == 0 {
		b.WriteString("\n" + lang.T("spend_empty"))
		return b.String()
	}
	for _, u := range sp.Users {
		fmt.Fprintf(&b, "\n%s：$%d", displayName(u.DisplayName), u.Total)
	}
	b.WriteString("\n" + lang.T("report_total", sp.GrandTotal))
	return b.String()
}
