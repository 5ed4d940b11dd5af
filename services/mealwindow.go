package services

import (
	"strings"
	"time"

	"meal-telegram/lang"
	"meal-telegram/models"
)

// Window is the ordering state at one instant.
type Window struct {
	Date   string // YYYY-MM-DD in the resolver's location
	Slot   models.MealSlot
	Open   bool
	Cutoff time.Time
}

// MealWindow maps wall-clock time to the meal slot currently taking orders.
// Before LunchCutoff lunch is open, before DinnerCutoff dinner is open,
// afterwards ordering is closed for the day.
type MealWindow struct {
	LunchCutoff  time.Duration
	DinnerCutoff time.Duration
	Location     *time.Location
}

func DefaultMealWindow(loc *time.Location) MealWindow {
	return MealWindow{LunchCutoff: 9 * time.Hour, DinnerCutoff: 17 * time.Hour, Location: loc}
}

func (w MealWindow) local(now time.Time) time.Time {
	if w.Location != nil {
		return now.In(w.Location)
	}
	return now
}

// Resolve is pure: the same instant always yields the same window.
func (w MealWindow) Resolve(now time.Time) Window {
	t := w.local(now)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	lunch := midnight.Add(w.LunchCutoff)
	dinner := midnight.Add(w.DinnerCutoff)
	win := Window{Date: midnight.Format("2006-01-02")}
	switch {
	case t.Before(lunch):
		win.Slot, win.Open, win.Cutoff = models.SlotLunch, true, lunch
	case t.Before(dinner):
		win.Slot, win.Open, win.Cutoff = models.SlotDinner, true, dinner
	}
	return win
}

// Today returns the local calendar date for now.
func (w MealWindow) Today(now time.Time) string {
	return w.local(now).Format("2006-01-02")
}

// ReportSlot is the slot the "current" report commands look at: the open one,
// or dinner once ordering has closed.
func (w MealWindow) ReportSlot(now time.Time) models.MealSlot {
	if win := w.Resolve(now); win.Open {
		return win.Slot
	}
	return models.SlotDinner
}

// ParseSlot accepts the chat spellings of a meal slot.
func ParseSlot(s string) (models.MealSlot, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "中餐", "午餐", "lunch":
		return models.SlotLunch, true
	case "晚餐", "dinner":
		return models.SlotDinner, true
	}
	return "", false
}

func SlotLabel(s models.MealSlot) string {
	return lang.T("slot_" + string(s))
}

func KindLabel(k models.VendorKind) string {
	if k == "" {
		return lang.T("kind_all")
	}
	return lang.T("kind_" + string(k))
}

// VendorKindLabel is 餐廳 or 飲料店; the empty kind means either.
func VendorKindLabel(k models.VendorKind) string {
	if k == "" {
		return lang.T("vendor_any")
	}
	return lang.T("vendor_" + string(k))
}
