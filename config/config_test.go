package config

import (
	"testing"
	"time"
)

func TestParseCutoff(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"09:00", 9 * time.Hour, false},
		{"17:00", 17 * time.Hour, false},
		{" 11:30 ", 11*time.Hour + 30*time.Minute, false},
		{"00:00", 0, false},
		{"25:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCutoff(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCutoff(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCutoff(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"LUNCH_CUTOFF", "DINNER_CUTOFF", "MAX_QUANTITY", "PAGE_SIZE", "ADMIN_IDS", "STORE_BACKEND", "SESSION_BACKEND", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
	t.Setenv("TIMEZONE", "UTC")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ordering.LunchCutoff != 9*time.Hour || cfg.Ordering.DinnerCutoff != 17*time.Hour {
		t.Errorf("cutoffs = %v/%v, want 9h/17h", cfg.Ordering.LunchCutoff, cfg.Ordering.DinnerCutoff)
	}
	if cfg.Ordering.MaxQuantity != 5 || cfg.Ordering.PageSize != 12 {
		t.Errorf("MaxQuantity/PageSize = %d/%d, want 5/12", cfg.Ordering.MaxQuantity, cfg.Ordering.PageSize)
	}
	if cfg.Storage.Store != BackendPostgres || cfg.Storage.Session != BackendMemory {
		t.Errorf("backends = %q/%q", cfg.Storage.Store, cfg.Storage.Session)
	}
	if !cfg.Ordering.IsAdmin("anyone") {
		t.Error("empty ADMIN_IDS should allow everyone")
	}
}

func TestLoadRejectsInvertedCutoffs(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LUNCH_CUTOFF", "18:00")
	t.Setenv("DINNER_CUTOFF", "17:00")
	if _, err := Load(); err == nil {
		t.Error("Load with lunch after dinner: want error")
	}
}

func TestIsAdmin(t *testing.T) {
	c := OrderingConfig{AdminIDs: splitList(" 42, 7 ,,")}
	tests := []struct {
		id   string
		want bool
	}{
		{"42", true},
		{"7", true},
		{"8", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.IsAdmin(tt.id); got != tt.want {
			t.Errorf("IsAdmin(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	if got, want := c.DSN(), "postgres://u:p@h:5433/d?sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	c.URL = "postgres://x/y"
	if got := c.DSN(); got != "postgres://x/y" {
		t.Errorf("DSN() with URL = %q", got)
	}
}
