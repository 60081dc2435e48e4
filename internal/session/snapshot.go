package session

import (
	"time"

	"eatzone/internal/domain"
)

// Snapshot is everything the frontend needs to draw the current view.
// Only the payload of the current view is set.
type Snapshot struct {
	SessionID string       `json:"sessionId"`
	Version   uint64       `json:"version"`
	View      domain.View  `json:"view"`
	User      *domain.User `json:"user,omitempty"`
	CartCount int          `json:"cartCount"`
	Notice    string       `json:"notice,omitempty"`

	Cart   *CartView   `json:"cart,omitempty"`
	Chat   *ChatView   `json:"chat,omitempty"`
	Orders *OrdersView `json:"orders,omitempty"`
}

type CartView struct {
	Items    []domain.CartItem `json:"items"`
	Total    int64             `json:"total"`
	Checkout *CheckoutView     `json:"checkout,omitempty"`
}

type CheckoutView struct {
	Remaining int       `json:"remaining"`
	StartedAt time.Time `json:"startedAt"`
}

type ChatView struct {
	SellerID   string               `json:"sellerId"`
	SellerName string               `json:"sellerName"`
	Messages   []domain.ChatMessage `json:"messages"`
	Awaiting   bool                 `json:"awaiting"`
}

// OrdersView lists orders newest first.
type OrdersView struct {
	Items []OrderView `json:"items"`
}

type OrderView struct {
	domain.Order
	StatusLabel string `json:"statusLabel"`
}

func NewOrderViews(orders []domain.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderView{Order: o, StatusLabel: o.Status.Label()})
	}
	return out
}
