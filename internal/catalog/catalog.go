// Package catalog holds the fixed canteen menu. Nothing here is ever mutated;
// every accessor hands out copies.
package catalog

import (
	"strings"

	"eatzone/internal/domain"
)

const (
	AllCanteens       = "all"
	defaultSellerName = "Penjual"
)

// Source is what the rest of the engine needs from a menu catalog.
type Source interface {
	Items() []domain.MenuItem
	Item(id string) (domain.MenuItem, bool)
	Canteens() []domain.Canteen
	Search(query, canteenID string) []domain.MenuItem
	SellerName(sellerID string) string
	HasSeller(sellerID string) bool
}

var _ Source = (*Catalog)(nil)

type Catalog struct {
	items []domain.MenuItem
}

func New(items []domain.MenuItem) *Catalog {
	return &Catalog{items: append([]domain.MenuItem(nil), items...)}
}

// Default returns the campus menu served by the demo.
func Default() *Catalog {
	return New(defaultMenu)
}

func (c *Catalog) Items() []domain.MenuItem {
	return append([]domain.MenuItem(nil), c.items...)
}

func (c *Catalog) Item(id string) (domain.MenuItem, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.MenuItem{}, false
}

// Canteens lists each canteen once, in the order it first appears in the menu.
func (c *Catalog) Canteens() []domain.Canteen {
	seen := make(map[string]bool)
	var out []domain.Canteen
	for _, it := range c.items {
		if seen[it.Canteen] {
			continue
		}
		seen[it.Canteen] = true
		out = append(out, domain.Canteen{ID: it.CanteenID, Name: it.Canteen, SellerID: it.SellerID})
	}
	return out
}

// Search matches query against item and canteen names, case-insensitively.
// An empty canteenID or "all" does not filter by canteen.
func (c *Catalog) Search(query, canteenID string) []domain.MenuItem {
	q := strings.ToLower(query)
	out := make([]domain.MenuItem, 0, len(c.items))
	for _, it := range c.items {
		matches := strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Canteen), q)
		inCanteen := canteenID == "" || canteenID == AllCanteens || it.CanteenID == canteenID
		if matches && inCanteen {
			out = append(out, it)
		}
	}
	return out
}

func (c *Catalog) SellerName(sellerID string) string {
	for _, it := range c.items {
		if it.SellerID == sellerID {
			return it.Canteen
		}
	}
	return defaultSellerName
}

func (c *Catalog) HasSeller(sellerID string) bool {
	for _, it := range c.items {
		if it.SellerID == sellerID {
			return true
		}
	}
	return false
}
