package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meal-telegram/models"
)

// MemStore keeps the catalog, the vendor-of-the-day table and the ledger in
// memory. It backs STORE_BACKEND=memory and the engine tests.
type MemStore struct {
	mu         sync.RWMutex
	vendors    []models.Vendor
	categories []models.MenuCategory
	items      []models.MenuItem
	itemSeq    map[int64]int // per-vendor item ordinal
	selections map[selectionKey]int64
	users      map[string]*models.User
	records    []memRecord
	nextID     int64
}

type selectionKey struct {
	date string
	slot models.MealSlot
	kind models.VendorKind
}

type memRecord struct {
	id        int64
	userID    int64
	date      string
	slot      models.MealSlot
	itemID    int64
	quantity  int
	note      string
	createdAt time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		itemSeq:    make(map[int64]int),
		selections: make(map[selectionKey]int64),
		users:      make(map[string]*models.User),
	}
}

func (s *MemStore) id() int64 {
	s.nextID++
	return s.nextID
}

// AddVendor appends a vendor with the next sequential code.
func (s *MemStore) AddVendor(name string, kind models.VendorKind) models.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, err := VendorCode(len(s.vendors))
	if err != nil {
		panic(err)
	}
	v := models.Vendor{ID: s.id(), Name: name, Code: code, Kind: kind}
	s.vendors = append(s.vendors, v)
	return v
}

func (s *MemStore) AddCategory(vendorID int64, name string) models.MenuCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.MenuCategory{ID: s.id(), VendorID: vendorID, Name: name, Position: len(s.categories)}
	s.categories = append(s.categories, c)
	return c
}

// AddItem appends an item to a category and assigns the vendor's next item code.
func (s *MemStore) AddItem(categoryID int64, name string, price int64, note string) models.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cat *models.MenuCategory
	for i := range s.categories {
		if s.categories[i].ID == categoryID {
			cat = &s.categories[i]
		}
	}
	if cat == nil {
		panic(fmt.Sprintf("memstore: unknown category %d", categoryID))
	}
	var vendorCode string
	for _, v := range s.vendors {
		if v.ID == cat.VendorID {
			vendorCode = v.Code
		}
	}
	s.itemSeq[cat.VendorID]++
	it := models.MenuItem{
		ID:         s.id(),
		VendorID:   cat.VendorID,
		CategoryID: categoryID,
		Name:       name,
		Price:      price,
		Note:       note,
		Code:       ItemCode(vendorCode, s.itemSeq[cat.VendorID]),
	}
	s.items = append(s.items, it)
	return it
}

// RemoveItem drops an item from the catalog, leaving ledger rows untouched.
func (s *MemStore) RemoveItem(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// ImportCatalog loads parsed menu documents. Codes already assigned by the
// importer are kept. With reset the previous catalog, selections and ledger
// are discarded; without it a non-empty catalog is refused.
func (s *MemStore) ImportCatalog(_ context.Context, vendors []ImportedVendor, reset bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.vendors) > 0 && !reset {
		return ErrCatalogNotEmpty
	}
	if reset {
		s.vendors, s.categories, s.items, s.records = nil, nil, nil, nil
		s.itemSeq = make(map[int64]int)
		s.selections = make(map[selectionKey]int64)
	}
	for _, iv := range vendors {
		v := models.Vendor{ID: s.id(), Name: iv.Name, Code: iv.Code, Kind: iv.Kind}
		s.vendors = append(s.vendors, v)
		for _, ic := range iv.Categories {
			c := models.MenuCategory{ID: s.id(), VendorID: v.ID, Name: ic.Name, Position: len(s.categories)}
			s.categories = append(s.categories, c)
			for _, it := range ic.Items {
				s.itemSeq[v.ID]++
				s.items = append(s.items, models.MenuItem{
					ID: s.id(), VendorID: v.ID, CategoryID: c.ID,
					Name: it.Name, Price: it.Price, Note: it.Note, Code: it.Code,
				})
			}
		}
	}
	return nil
}

func (s *MemStore) ListVendors(_ context.Context, kind models.VendorKind) ([]models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Vendor
	for _, v := range s.vendors {
		if kind == "" || v.Kind == kind {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemStore) findVendor(match func(models.Vendor) bool) (*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vendors {
		if match(v) {
			v := v
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) VendorByID(_ context.Context, id int64) (*models.Vendor, error) {
	return s.findVendor(func(v models.Vendor) bool { return v.ID == id })
}

func (s *MemStore) VendorByName(_ context.Context, name string) (*models.Vendor, error) {
	return s.findVendor(func(v models.Vendor) bool { return v.Name == name })
}

func (s *MemStore) VendorByCode(_ context.Context, code string) (*models.Vendor, error) {
	return s.findVendor(func(v models.Vendor) bool { return v.Code == code })
}

func (s *MemStore) ListCategories(_ context.Context, vendorID int64) ([]models.MenuCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MenuCategory
	for _, c := range s.categories {
		if c.VendorID == vendorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemStore) CategoryByName(_ context.Context, vendorID int64, name string) (*models.MenuCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.VendorID == vendorID && c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) ListItems(_ context.Context, categoryID int64) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MenuItem
	for _, it := range s.items {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemStore) findItem(match func(models.MenuItem) bool) (*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if match(it) {
			it := it
			return &it, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) ItemByID(_ context.Context, id int64) (*models.MenuItem, error) {
	return s.findItem(func(it models.MenuItem) bool { return it.ID == id })
}

func (s *MemStore) ItemByCode(_ context.Context, code string) (*models.MenuItem, error) {
	return s.findItem(func(it models.MenuItem) bool { return it.Code == code })
}

func (s *MemStore) ItemByName(_ context.Context, vendorID int64, name string) (*models.MenuItem, error) {
	return s.findItem(func(it models.MenuItem) bool { return it.VendorID == vendorID && it.Name == name })
}

func (s *MemStore) PutSelection(_ context.Context, sel models.DailySelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[selectionKey{sel.Date, sel.Slot, sel.Kind}] = sel.VendorID
	return nil
}

func (s *MemStore) GetSelection(_ context.Context, date string, slot models.MealSlot, kind models.VendorKind) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.selections[selectionKey{date, slot, kind}]
	return id, ok, nil
}

func (s *MemStore) ListSelections(_ context.Context, date string) ([]models.DailySelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DailySelection
	for _, slot := range []models.MealSlot{models.SlotLunch, models.SlotDinner} {
		for _, kind := range []models.VendorKind{models.KindFood, models.KindDrink} {
			if id, ok := s.selections[selectionKey{date, slot, kind}]; ok {
				out = append(out, models.DailySelection{Date: date, Slot: slot, Kind: kind, VendorID: id})
			}
		}
	}
	return out, nil
}

// RecordOrder creates the user on first use, then appends one ledger row.
func (s *MemStore) RecordOrder(_ context.Context, in models.CreateOrderInput) (int64, error) {
	if in.Quantity <= 0 {
		return 0, fmt.Errorf("quantity must be > 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[in.PlatformUserID]
	if !ok {
		u = &models.User{ID: s.id(), PlatformUserID: in.PlatformUserID}
		s.users[in.PlatformUserID] = u
	}
	if in.DisplayName != "" {
		u.DisplayName = in.DisplayName
	}
	rec := memRecord{
		id: s.id(), userID: u.ID, date: in.Date, slot: in.Slot,
		itemID: in.ItemID, quantity: in.Quantity, note: in.Note, createdAt: time.Now(),
	}
	s.records = append(s.records, rec)
	return rec.id, nil
}

func (s *MemStore) ListOrders(_ context.Context, date string, slot models.MealSlot) ([]models.OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	usersByID := make(map[int64]*models.User, len(s.users))
	for _, u := range s.users {
		usersByID[u.ID] = u
	}
	var out []models.OrderLine
	for _, r := range s.records {
		if r.date != date || r.slot != slot {
			continue
		}
		var item models.MenuItem
		for _, it := range s.items {
			if it.ID == r.itemID {
				item = it
			}
		}
		if item.ID == 0 {
			// item removed from the catalog after the order was taken
			continue
		}
		out = append(out, models.OrderLine{
			RecordID:    r.id,
			UserID:      r.userID,
			DisplayName: usersByID[r.userID].DisplayName,
			VendorID:    item.VendorID,
			ItemID:      item.ID,
			ItemCode:    item.Code,
			ItemName:    item.Name,
			Price:       item.Price,
			Quantity:    r.quantity,
			Note:        r.note,
			CreatedAt:   r.createdAt,
		})
	}
	return out, nil
}

// UserByPlatformID returns the lazily created user, if any.
func (s *MemStore) UserByPlatformID(_ context.Context, platformUserID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[platformUserID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// OrderCount is the total number of ledger rows across all dates.
func (s *MemStore) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemStore) CatalogEmpty(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vendors) == 0, nil
}
