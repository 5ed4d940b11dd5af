package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"meal-telegram/models"
)

// Catalog is the read side of the vendor/menu store. Lookups that find
// nothing return ErrNotFound. Listings come back in insertion order.
type Catalog interface {
	ListVendors(ctx context.Context, kind models.VendorKind) ([]models.Vendor, error)
	VendorByID(ctx context.Context, id int64) (*models.Vendor, error)
	VendorByName(ctx context.Context, name string) (*models.Vendor, error)
	VendorByCode(ctx context.Context, code string) (*models.Vendor, error)
	ListCategories(ctx context.Context, vendorID int64) ([]models.MenuCategory, error)
	CategoryByName(ctx context.Context, vendorID int64, name string) (*models.MenuCategory, error)
	ListItems(ctx context.Context, categoryID int64) ([]models.MenuItem, error)
	ItemByID(ctx context.Context, id int64) (*models.MenuItem, error)
	ItemByCode(ctx context.Context, code string) (*models.MenuItem, error)
	ItemByName(ctx context.Context, vendorID int64, name string) (*models.MenuItem, error)
}

var (
	itemCodeRe   = regexp.MustCompile(`^[A-Z]{2}[0-9]{2,}$`)
	vendorCodeRe = regexp.MustCompile(`^[A-Z]{2}$`)
)

// IsItemCode reports whether s has the shape of an item code such as AA01.
func IsItemCode(s string) bool {
	return itemCodeRe.MatchString(s)
}

// VendorCode returns the two-letter code for the n-th imported vendor: AA, AB, ... ZZ.
func VendorCode(n int) (string, error) {
	if n < 0 || n >= 26*26 {
		return "", fmt.Errorf("vendor index %d out of code range", n)
	}
	return string([]byte{byte('A' + n/26), byte('A' + n%26)}), nil
}

// ItemCode returns the code of the n-th item (1-based) of a vendor.
func ItemCode(vendorCode string, n int) string {
	return fmt.Sprintf("%s%02d", vendorCode, n)
}

// ResolveVendor finds a vendor by code, then by exact name.
func ResolveVendor(ctx context.Context, c Catalog, ref string) (*models.Vendor, error) {
	ref = strings.TrimSpace(ref)
	if code := strings.ToUpper(ref); vendorCodeRe.MatchString(code) {
		v, err := c.VendorByCode(ctx, code)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return c.VendorByName(ctx, ref)
}

const labelMax = 20

// SafeLabel truncates s to the quick-reply label limit, marking the cut with an ellipsis.
func SafeLabel(s string) string {
	r := []rune(s)
	if len(r) <= labelMax {
		return s
	}
	return string(r[:labelMax-1]) + "…"
}

// Paginate returns the 1-based page of items and whether a further page exists.
func Paginate[T any](items []T, page, size int) ([]T, bool) {
	if page < 1 || size < 1 {
		return nil, false
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil, false
	}
	end := start + size
	if end >= len(items) {
		return items[start:], false
	}
	return items[start:end], true
}
