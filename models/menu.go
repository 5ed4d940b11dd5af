package models

// VendorKind is the explicit food/drink flag set at import time.
type VendorKind string

const (
	KindFood  VendorKind = "food"
	KindDrink VendorKind = "drink"
)

func (k VendorKind) Valid() bool {
	return k == KindFood || k == KindDrink
}

// Customizable reports whether items of this vendor go through the sweetness/ice steps.
func (k VendorKind) Customizable() bool {
	return k == KindDrink
}

type Vendor struct {
	ID   int64
	Name string
	Code string // two letters, assigned by import order
	Kind VendorKind
}

type MenuCategory struct {
	ID       int64
	VendorID int64
	Name     string
	Position int
}

type MenuItem struct {
	ID         int64
	VendorID   int64
	CategoryID int64
	Name       string
	Price      int64
	Note       string
	Code       string // vendor code + zero-padded ordinal, e.g. AA01
}
