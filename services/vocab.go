package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"meal-telegram/models"

	"gopkg.in/yaml.v3"
)

// MaxVocabOptions bounds each enumeration so it fits in one quick-reply set.
const MaxVocabOptions = 11

// Vocab is the customization vocabulary of one drink vendor.
type Vocab struct {
	Sweetness []string `yaml:"sweetness"`
	Ice       []string `yaml:"ice"`
}

// Vocabulary maps vendors (by code or name) to their own Vocab.
type Vocabulary struct {
	Default Vocab            `yaml:"default"`
	Vendors map[string]Vocab `yaml:"vendors"`
}

func DefaultVocab() Vocab {
	return Vocab{
		Sweetness: []string{"正常", "少糖", "半糖", "微糖", "無糖"},
		Ice:       []string{"正常", "少冰", "微冰", "去冰"},
	}
}

func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{Default: DefaultVocab(), Vendors: map[string]Vocab{}}
}

// LoadVocabulary reads a YAML vocabulary file. A missing file yields the defaults.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultVocabulary(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	def := DefaultVocab()
	if len(v.Default.Sweetness) == 0 {
		v.Default.Sweetness = def.Sweetness
	}
	if len(v.Default.Ice) == 0 {
		v.Default.Ice = def.Ice
	}
	if err := v.Default.validate(); err != nil {
		return nil, fmt.Errorf("default: %w", err)
	}
	if v.Vendors == nil {
		v.Vendors = map[string]Vocab{}
	}
	for key, voc := range v.Vendors {
		if len(voc.Sweetness) == 0 {
			voc.Sweetness = v.Default.Sweetness
		}
		if len(voc.Ice) == 0 {
			voc.Ice = v.Default.Ice
		}
		if err := voc.validate(); err != nil {
			return nil, fmt.Errorf("vendor %s: %w", key, err)
		}
		v.Vendors[key] = voc
	}
	return &v, nil
}

func (v Vocab) validate() error {
	for name, list := range map[string][]string{"sweetness": v.Sweetness, "ice": v.Ice} {
		if len(list) > MaxVocabOptions {
			return fmt.Errorf("%s has %d options, max %d", name, len(list), MaxVocabOptions)
		}
		seen := make(map[string]bool, len(list))
		for _, opt := range list {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				return fmt.Errorf("%s has an empty option", name)
			}
			if seen[strings.ToLower(opt)] {
				return fmt.Errorf("%s option %q repeated", name, opt)
			}
			seen[strings.ToLower(opt)] = true
		}
	}
	return nil
}

// For returns the vocabulary of a vendor: a block keyed by its code, then by
// its name, else the default.
func (v *Vocabulary) For(vendorCode, vendorName string) Vocab {
	if voc, ok := v.Vendors[vendorCode]; ok {
		return voc
	}
	if voc, ok := v.Vendors[vendorName]; ok {
		return voc
	}
	return v.Default
}

// ForVendor is For keyed by a catalog vendor.
func (v *Vocabulary) ForVendor(vendor models.Vendor) Vocab {
	return v.For(vendor.Code, vendor.Name)
}

// MatchSweetness returns the canonical option equal to input, ignoring ASCII case.
func (v Vocab) MatchSweetness(input string) (string, bool) {
	return match(v.Sweetness, input)
}

func (v Vocab) MatchIce(input string) (string, bool) {
	return match(v.Ice, input)
}

func match(options []string, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), input) {
			return opt, true
		}
	}
	return "", false
}
