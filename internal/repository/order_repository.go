package repository

import (
	"eatzone/internal/domain"
)

// OrderRepository stores the orders of one session. FindByID returns
// (nil, nil) when the order does not exist; FindAll lists newest first.
type OrderRepository interface {
	Save(order *domain.Order) error
	Update(order *domain.Order) error
	FindByID(id string) (*domain.Order, error)
	FindAll() ([]domain.Order, error)
	Clear() error
}
