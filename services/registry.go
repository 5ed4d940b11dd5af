package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"meal-telegram/models"
)

// SelectionStore persists the vendor-of-the-day table keyed by (date, slot, kind).
type SelectionStore interface {
	PutSelection(ctx context.Context, sel models.DailySelection) error
	GetSelection(ctx context.Context, date string, slot models.MealSlot, kind models.VendorKind) (vendorID int64, ok bool, err error)
	ListSelections(ctx context.Context, date string) ([]models.DailySelection, error)
}

// Registry is the vendor-of-the-day registry. Setting is last-write-wins and
// does not look at whether the slot is currently open.
type Registry struct {
	catalog Catalog
	store   SelectionStore
	intn    func(n int) int
}

func NewRegistry(catalog Catalog, store SelectionStore) *Registry {
	return &Registry{catalog: catalog, store: store, intn: rand.Intn}
}

// WithRand replaces the random source used by PickRandomVendor.
func (r *Registry) WithRand(intn func(n int) int) *Registry {
	r.intn = intn
	return r
}

func (r *Registry) SetFoodVendor(ctx context.Context, date string, slot models.MealSlot, vendorID int64) error {
	return r.set(ctx, date, slot, models.KindFood, vendorID)
}

func (r *Registry) SetDrinkVendor(ctx context.Context, date string, slot models.MealSlot, vendorID int64) error {
	return r.set(ctx, date, slot, models.KindDrink, vendorID)
}

func (r *Registry) set(ctx context.Context, date string, slot models.MealSlot, kind models.VendorKind, vendorID int64) error {
	if !slot.Valid() {
		return fmt.Errorf("invalid slot %q", slot)
	}
	v, err := r.catalog.VendorByID(ctx, vendorID)
	if err != nil {
		return fmt.Errorf("vendor %d: %w", vendorID, err)
	}
	if v.Kind != kind {
		return fmt.Errorf("%s is a %s vendor: %w", v.Name, v.Kind, ErrVendorKindMismatch)
	}
	return r.store.PutSelection(ctx, models.DailySelection{Date: date, Slot: slot, Kind: kind, VendorID: vendorID})
}

func (r *Registry) GetFoodVendor(ctx context.Context, date string, slot models.MealSlot) (*models.Vendor, bool, error) {
	return r.Get(ctx, date, slot, models.KindFood)
}

func (r *Registry) GetDrinkVendor(ctx context.Context, date string, slot models.MealSlot) (*models.Vendor, bool, error) {
	return r.Get(ctx, date, slot, models.KindDrink)
}

// Get returns the active vendor of a kind for (date, slot); ok is false when none is set.
func (r *Registry) Get(ctx context.Context, date string, slot models.MealSlot, kind models.VendorKind) (*models.Vendor, bool, error) {
	id, ok, err := r.store.GetSelection(ctx, date, slot, kind)
	if err != nil || !ok {
		return nil, false, err
	}
	v, err := r.catalog.VendorByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("selected vendor %d: %w", id, err)
	}
	return v, true, nil
}

// PickRandomVendor picks uniformly among all vendors of a kind.
func (r *Registry) PickRandomVendor(ctx context.Context, kind models.VendorKind) (*models.Vendor, error) {
	vendors, err := r.catalog.ListVendors(ctx, kind)
	if err != nil {
		return nil, err
	}
	if len(vendors) == 0 {
		return nil, ErrNoVendorsAvailable
	}
	v := vendors[r.intn(len(vendors))]
	return &v, nil
}

// PickAndSet picks a random vendor and makes it active. Nothing is written
// when the pick fails.
func (r *Registry) PickAndSet(ctx context.Context, date string, slot models.MealSlot, kind models.VendorKind) (*models.Vendor, error) {
	v, err := r.PickRandomVendor(ctx, kind)
	if err != nil {
		return nil, err
	}
	if err := r.set(ctx, date, slot, kind, v.ID); err != nil {
		return nil, err
	}
	return v, nil
}

// Selection is a DailySelection with its vendor resolved.
type Selection struct {
	Slot   models.MealSlot
	Kind   models.VendorKind
	Vendor models.Vendor
}

func (r *Registry) Selections(ctx context.Context, date string) ([]Selection, error) {
	sels, err := r.store.ListSelections(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make([]Selection, 0, len(sels))
	for _, s := range sels {
		v, err := r.catalog.VendorByID(ctx, s.VendorID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Selection{Slot: s.Slot, Kind: s.Kind, Vendor: *v})
	}
	return out, nil
}
