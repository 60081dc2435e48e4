package domain

// MenuItem is immutable catalog data. Price is in whole rupiah.
type MenuItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Canteen   string `json:"canteen"`
	CanteenID string `json:"canteenId"`
	Available bool   `json:"available"`
	SellerID  string `json:"sellerId"`
}

type Canteen struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SellerID string `json:"sellerId"`
}

type CartItem struct {
	MenuItem MenuItem `json:"menuItem"`
	Quantity int      `json:"quantity"`
}

func (c CartItem) Subtotal() int64 {
	return c.MenuItem.Price * int64(c.Quantity)
}
