package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Search(t *testing.T) {
	c := Default()

	tests := []struct {
		name      string
		query     string
		canteenID string
		wantIDs   []string
	}{
		{name: "empty query returns everything", wantIDs: []string{"1", "2", "3", "4", "5", "6"}},
		{name: "all canteens keyword", canteenID: AllCanteens, wantIDs: []string{"1", "2", "3", "4", "5", "6"}},
		{name: "matches item name case-insensitively", query: "AYAM", wantIDs: []string{"2", "4", "5"}},
		{name: "matches canteen name", query: "teknik", wantIDs: []string{"3", "4"}},
		{name: "canteen filter", canteenID: "canteen-3", wantIDs: []string{"5", "6"}},
		{name: "query and canteen combined", query: "ayam", canteenID: "canteen-1", wantIDs: []string{"2"}},
		{name: "no match", query: "pizza", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.query, tt.canteenID)
			ids := make([]string, 0, len(got))
			for _, it := range got {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCatalog_Canteens(t *testing.T) {
	canteens := Default().Canteens()
	require.Len(t, canteens, 3)
	assert.Equal(t, "canteen-1", canteens[0].ID)
	assert.Equal(t, "Kantin Pusat", canteens[0].Name)
	assert.Equal(t, "seller-1", canteens[0].SellerID)
	assert.Equal(t, "Kantin FEB", canteens[2].Name)
}

func TestCatalog_ItemsAreCopies(t *testing.T) {
	c := Default()
	items := c.Items()
	items[0].Price = 1

	it, ok := c.Item("1")
	require.True(t, ok)
	assert.Equal(t, int64(15000), it.Price)

	_, ok = c.Item("missing")
	assert.False(t, ok)
}

func TestCatalog_Sellers(t *testing.T) {
	c := Default()
	assert.Equal(t, "Kantin Teknik", c.SellerName("seller-2"))
	assert.Equal(t, "Penjual", c.SellerName("seller-9"))
	assert.True(t, c.HasSeller("seller-3"))
	assert.False(t, c.HasSeller(""))
}
