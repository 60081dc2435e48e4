package memory

import (
	"errors"
	"sort"
	"sync"

	"eatzone/internal/domain"
	"eatzone/internal/repository"
)

var (
	ErrDuplicateOrder = errors.New("order already exists")
	ErrUnknownOrder   = errors.New("order does not exist")
	ErrMissingOrderID = errors.New("order id is empty")
)

type orderRepo struct {
	mu     sync.RWMutex
	orders []domain.Order
}

func NewOrderRepository() repository.OrderRepository {
	return &orderRepo{}
}

func (r *orderRepo) Save(order *domain.Order) error {
	if order.ID == "" {
		return ErrMissingOrderID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(order.ID) >= 0 {
		return ErrDuplicateOrder
	}
	r.orders = append(r.orders, order.Clone())
	return nil
}

func (r *orderRepo) Update(order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(order.ID)
	if i < 0 {
		return ErrUnknownOrder
	}
	r.orders[i] = order.Clone()
	return nil
}

func (r *orderRepo) FindByID(id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	o := r.orders[i].Clone()
	return &o, nil
}

// FindAll orders by creation time descending. Orders created at the same
// instant keep reverse insertion order, so the latest save still comes first.
func (r *orderRepo) FindAll() ([]domain.Order, error) {
	r.mu.RLock()
	out := make([]domain.Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		out = append(out, r.orders[i].Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *orderRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = nil
	return nil
}

func (r *orderRepo) indexOf(id string) int {
	for i := range r.orders {
		if r.orders[i].ID == id {
			return i
		}
	}
	return -1
}
