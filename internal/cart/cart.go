// Package cart keeps the buyer's quantity-adjusted menu selections.
// A Cart is not safe for concurrent use; its owner serializes access.
package cart

import "eatzone/internal/domain"

type Cart struct {
	items []domain.CartItem
}

func New() *Cart {
	return &Cart{}
}

// Add merges quantity into an existing entry for the same item or appends a
// new entry. Quantities are trusted as given.
func (c *Cart) Add(item domain.MenuItem, quantity int) {
	for i := range c.items {
		if c.items[i].MenuItem.ID == item.ID {
			c.items[i].Quantity += quantity
			return
		}
	}
	c.items = append(c.items, domain.CartItem{MenuItem: item, Quantity: quantity})
}

// UpdateQuantity sets the quantity of itemID. A quantity of zero or less
// removes the entry. Unknown ids are ignored.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		out := c.items[:0]
		for _, it := range c.items {
			if it.MenuItem.ID != itemID {
				out = append(out, it)
			}
		}
		c.items = out
		return
	}
	for i := range c.items {
		if c.items[i].MenuItem.ID == itemID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Total() int64 {
	return Total(c.items)
}

// Count is the number of units across all entries.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Items() []domain.CartItem {
	return append([]domain.CartItem(nil), c.items...)
}

// Snapshot is the deep copy an order is built from. CartItem holds its
// MenuItem by value, so copying the slice detaches it from the cart.
func (c *Cart) Snapshot() []domain.CartItem {
	return c.Items()
}

func (c *Cart) Clear() {
	c.items = nil
}

// Total sums price * quantity over items.
func Total(items []domain.CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}
