package services

import (
	"time"

	"eatzone/internal/domain"
)

func CreateMockOrder(id string, total int64, status domain.OrderStatus, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID:        id,
		Items:     []domain.CartItem{{MenuItem: CreateMockMenuItem(TestItemID, TestItemName, TestItemPrice), Quantity: int(total / TestItemPrice)}},
		Total:     total,
		Status:    status,
		CreatedAt: createdAt,
		SellerID:  TestSellerID,
	}
}

func CreateMockMenuItem(id, name string, price int64) domain.MenuItem {
	return domain.MenuItem{
		ID:        id,
		Name:      name,
		Price:     price,
		Canteen:   "Kantin Pusat",
		CanteenID: "canteen-1",
		Available: true,
		SellerID:  TestSellerID,
	}
}

// FixedRand always returns the same draw.
type FixedRand float64

func (r FixedRand) Float64() float64 { return float64(r) }

const (
	TestItemID    = "1"
	TestItemName  = "Nasi Goreng Spesial"
	TestItemPrice = int64(15000)
	TestSellerID  = "seller-1"
	TestProof     = "data:x"
	TestPickup    = "12:30"
)
