package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const vocabYAML = `
default:
  sweetness: [正常, 少糖, 半糖, 微糖, 無糖]
  ice: [正常, 少冰, 微冰, 去冰]
vendors:
  AB:
    sweetness: ["100%", "70%", "50%", "30%", "0%"]
    ice: ["100%", "70%", "50%", "30%", "0%", "hot"]
  清原:
    ice: [正常, 去冰, 熱]
`

func TestParseVocabulary(t *testing.T) {
	v, err := ParseVocabulary([]byte(vocabYAML))
	if err != nil {
		t.Fatalf("ParseVocabulary: %v", err)
	}
	b := v.For("AB", "B")
	if len(b.Sweetness) != 5 || len(b.Ice) != 6 {
		t.Errorf("AB vocab = %+v", b)
	}
	if got, ok := b.MatchIce("HOT"); !ok || got != "hot" {
		t.Errorf("MatchIce(HOT) = %q, %v, want hot", got, ok)
	}
	if _, ok := b.MatchSweetness("半糖"); ok {
		t.Error("AB vocabulary accepted another vendor's sweetness value")
	}

	// keyed by name, sweetness falls back to the default list
	c := v.For("AC", "清原")
	if c.Sweetness[2] != "半糖" || len(c.Ice) != 3 {
		t.Errorf("清原 vocab = %+v", c)
	}

	d := v.For("ZZ", "unknown")
	if _, ok := d.MatchSweetness("少糖"); !ok {
		t.Error("default vocabulary should accept 少糖")
	}
	if _, ok := d.MatchSweetness(""); ok {
		t.Error("empty input matched")
	}
}

func TestParseVocabularyRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"too many", "default:\n  sweetness: [a, b, c, d, e, f, g, h, i, j, k, l]\n", "max 11"},
		{"duplicate", "vendors:\n  AA:\n    ice: [去冰, 去冰]\n", "repeated"},
		{"empty option", "vendors:\n  AA:\n    ice: [\"\", 去冰]\n", "empty option"},
		{"bad yaml", "default: [", "parse vocabulary"},
	}
	for _, tt := range tests {
		_, err := ParseVocabulary([]byte(tt.yaml))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want containing %q", tt.name, err, tt.want)
		}
	}
}

func TestLoadVocabulary(t *testing.T) {
	v, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if len(v.Default.Sweetness) != 5 {
		t.Errorf("default sweetness = %v", v.Default.Sweetness)
	}

	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte(vocabYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err = LoadVocabulary(path)
	if err != nil {
		t.Fatalf("LoadVocabulary: %v", err)
	}
	if _, ok := v.Vendors["AB"]; !ok {
		t.Error("vendor AB not loaded")
	}
}
