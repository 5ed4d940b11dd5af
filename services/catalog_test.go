package services

import (
	"context"
	"errors"
	"testing"

	"meal-telegram/models"
)

func TestIsItemCode(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"AA01", true},
		{"ZZ123", true},
		{"AA1", false},
		{"aa01", false},
		{"A01", false},
		{"AA01 ", false},
		{"雞腿便當", false},
	}
	for _, tt := range tests {
		if got := IsItemCode(tt.in); got != tt.want {
			t.Errorf("IsItemCode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVendorCode(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "AA"},
		{1, "AB"},
		{25, "AZ"},
		{26, "BA"},
		{675, "ZZ"},
	}
	for _, tt := range tests {
		got, err := VendorCode(tt.n)
		if err != nil || got != tt.want {
			t.Errorf("VendorCode(%d) = %q, %v, want %q", tt.n, got, err, tt.want)
		}
	}
	if _, err := VendorCode(676); err == nil {
		t.Error("VendorCode(676): want error")
	}
}

func TestItemCode(t *testing.T) {
	if got := ItemCode("AB", 3); got != "AB03" {
		t.Errorf("ItemCode(AB, 3) = %q, want AB03", got)
	}
	if got := ItemCode("AB", 120); got != "AB120" {
		t.Errorf("ItemCode(AB, 120) = %q, want AB120", got)
	}
}

func TestSafeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"紅茶", "紅茶"},
		{"12345678901234567890", "12345678901234567890"},
		{"123456789012345678901", "1234567890123456789…"},
		{"超級無敵霹靂好吃的招牌雞腿便當加大份量版本", "超級無敵霹靂好吃的招牌雞腿便當加大份量…"},
	}
	for _, tt := range tests {
		if got := SafeLabel(tt.in); got != tt.want {
			t.Errorf("SafeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		page, size int
		want       []int
		wantMore   bool
	}{
		{1, 2, []int{1, 2}, true},
		{2, 2, []int{3, 4}, true},
		{3, 2, []int{5}, false},
		{4, 2, nil, false},
		{1, 5, []int{1, 2, 3, 4, 5}, false},
		{0, 2, nil, false},
	}
	for _, tt := range tests {
		got, more := Paginate(items, tt.page, tt.size)
		if len(got) != len(tt.want) || more != tt.wantMore {
			t.Errorf("Paginate(page=%d, size=%d) = %v, %v, want %v, %v", tt.page, tt.size, got, more, tt.want, tt.wantMore)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Paginate(page=%d, size=%d) = %v, want %v", tt.page, tt.size, got, tt.want)
				break
			}
		}
	}
}

func TestResolveVendor(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	a := s.AddVendor("好味便當", models.KindFood)
	b := s.AddVendor("AB", models.KindDrink) // name that looks like a code

	tests := []struct {
		ref    string
		wantID int64
	}{
		{"AA", a.ID},
		{"aa", a.ID},
		{"好味便當", a.ID},
		{"AB", b.ID}, // code AB belongs to the second vendor
	}
	for _, tt := range tests {
		v, err := ResolveVendor(ctx, s, tt.ref)
		if err != nil {
			t.Errorf("ResolveVendor(%q) err = %v", tt.ref, err)
			continue
		}
		if v.ID != tt.wantID {
			t.Errorf("ResolveVendor(%q) = %d, want %d", tt.ref, v.ID, tt.wantID)
		}
	}
	if _, err := ResolveVendor(ctx, s, "不存在"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveVendor(unknown) err = %v, want ErrNotFound", err)
	}
}
