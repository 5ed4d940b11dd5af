package models

import "time"

// MealSlot is the meal window an order belongs to.
type MealSlot string

const (
	SlotLunch  MealSlot = "lunch"
	SlotDinner MealSlot = "dinner"
)

func (s MealSlot) Valid() bool {
	return s == SlotLunch || s == SlotDinner
}

// DailySelection is the vendor-of-the-day for one (date, slot, kind).
type DailySelection struct {
	Date     string // YYYY-MM-DD
	Slot     MealSlot
	Kind     VendorKind
	VendorID int64
}

type User struct {
	ID             int64
	PlatformUserID string
	DisplayName    string
}

type CreateOrderInput struct {
	PlatformUserID string
	DisplayName    string
	Date           string
	Slot           MealSlot
	ItemID         int64
	Quantity       int
	Note           string
}

// OrderLine is a ledger row joined with the user and item it references.
// Lines are returned in ledger insertion order.
type OrderLine struct {
	RecordID    int64
	UserID      int64
	DisplayName string
	VendorID    int64
	ItemID      int64
	ItemCode    string
	ItemName    string
	Price       int64
	Quantity    int
	Note        string
	CreatedAt   time.Time
}

func (l OrderLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}
