package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"meal-telegram/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var ErrCatalogNotEmpty = errors.New("catalog is not empty; use reset to replace it")

type ImportedItem struct {
	Name  string
	Price int64
	Note  string
	Code  string
}

type ImportedCategory struct {
	Name  string
	Items []ImportedItem
}

type ImportedVendor struct {
	Name       string
	Kind       models.VendorKind
	Code       string
	Categories []ImportedCategory
}

// CatalogImporter replaces the catalog with parsed menu documents.
type CatalogImporter interface {
	ImportCatalog(ctx context.Context, vendors []ImportedVendor, reset bool) error
}

// "- 雞腿便當 ...... $120/加滷蛋": name, leader dots, optional $, price, optional /note
var menuItemRe = regexp.MustCompile(`^(.+?)\s*[.。．…]*\s*\$?([0-9]+)(?:/(\S+))?\s*$`)

var vendorSuffixes = []string{"飲料店菜單", "餐廳菜單", "菜單"}

// ParseMenu reads one markdown menu document. Level-1 headings open a vendor,
// level-2 headings a category, and list items are menu entries. Entries that
// cannot be parsed or that appear outside a category are returned in skipped.
func ParseMenu(src []byte, kind models.VendorKind) (vendors []ImportedVendor, skipped []string) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := linesText(node, src)
			switch node.Level {
			case 1:
				vendors = append(vendors, ImportedVendor{Name: vendorName(title), Kind: kind})
			case 2:
				if len(vendors) == 0 {
					skipped = append(skipped, "## "+title)
					continue
				}
				v := &vendors[len(vendors)-1]
				v.Categories = append(v.Categories, ImportedCategory{Name: title})
			}
		case *ast.List:
			_ = ast.Walk(node, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
				li, ok := c.(*ast.ListItem)
				if !entering || !ok {
					return ast.WalkContinue, nil
				}
				line := listItemText(li, src)
				item, ok := parseMenuLine(line)
				if !ok || len(vendors) == 0 || len(vendors[len(vendors)-1].Categories) == 0 {
					skipped = append(skipped, "- "+line)
					return ast.WalkSkipChildren, nil
				}
				v := &vendors[len(vendors)-1]
				cat := &v.Categories[len(v.Categories)-1]
				cat.Items = append(cat.Items, item)
				return ast.WalkSkipChildren, nil
			})
		}
	}
	return vendors, skipped
}

func vendorName(title string) string {
	for _, suffix := range vendorSuffixes {
		if strings.HasSuffix(title, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(title, suffix))
		}
	}
	return title
}

func parseMenuLine(line string) (ImportedItem, bool) {
	m := menuItemRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return ImportedItem{}, false
	}
	price, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return ImportedItem{}, false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return ImportedItem{}, false
	}
	return ImportedItem{Name: name, Price: price, Note: m[3]}, true
}

// linesText joins the raw source lines of a block node.
func linesText(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimSpace(b.String())
}

// listItemText returns the first text block of a list item.
func listItemText(li *ast.ListItem, src []byte) string {
	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeBlock && c.Lines().Len() > 0 {
			return linesText(c, src)
		}
	}
	return ""
}

// AssignCodes gives vendors sequential two-letter codes in slice order and
// numbers each vendor's items across its categories in document order.
func AssignCodes(vendors []ImportedVendor) error {
	seen := make(map[string]bool, len(vendors))
	for i := range vendors {
		v := &vendors[i]
		if seen[v.Name] {
			return fmt.Errorf("vendor %q appears twice", v.Name)
		}
		seen[v.Name] = true
		code, err := VendorCode(i)
		if err != nil {
			return err
		}
		v.Code = code
		n := 0
		for c := range v.Categories {
			for it := range v.Categories[c].Items {
				n++
				v.Categories[c].Items[it].Code = ItemCode(code, n)
			}
		}
	}
	return nil
}

// LoadMenuFiles parses the food and drink documents (food first) and assigns
// codes. An empty path is skipped.
func LoadMenuFiles(menuPath, drinkPath string) ([]ImportedVendor, []string, error) {
	var all []ImportedVendor
	var skipped []string
	for _, src := range []struct {
		path string
		kind models.VendorKind
	}{{menuPath, models.KindFood}, {drinkPath, models.KindDrink}} {
		if src.path == "" {
			continue
		}
		data, err := os.ReadFile(src.path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", src.path, err)
		}
		vendors, skip := ParseMenu(data, src.kind)
		all = append(all, vendors...)
		skipped = append(skipped, skip...)
	}
	if err := AssignCodes(all); err != nil {
		return nil, nil, err
	}
	return all, skipped, nil
}
