package services

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"eatzone/internal/cart"
	"eatzone/internal/clock"
	"eatzone/internal/domain"
	"eatzone/internal/infra"
	"eatzone/internal/repository"
)

var transitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.StatusPendingPayment:  {domain.StatusPaymentUploaded, domain.StatusCancelled},
	domain.StatusPaymentUploaded: {domain.StatusConfirmed, domain.StatusCancelled},
	domain.StatusConfirmed:       {domain.StatusReady, domain.StatusCancelled},
	domain.StatusReady:           {domain.StatusCompleted, domain.StatusCancelled},
}

// CanTransition reports whether an order may move from one status to the next.
func CanTransition(from, to domain.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatus is the forward step of the lifecycle, ignoring cancellation.
func NextStatus(s domain.OrderStatus) (domain.OrderStatus, bool) {
	next, ok := transitions[s]
	if !ok {
		return "", false
	}
	return next[0], true
}

// ValidateSubmission checks a checkout submission before any state changes.
func ValidateSubmission(paymentProof, pickupTime string) error {
	if paymentProof == "" {
		return ErrMissingPaymentProof
	}
	if pickupTime == "" {
		return ErrMissingPickupTime
	}
	return nil
}

type OrderService struct {
	repo      repository.OrderRepository
	publisher infra.PublisherInterface
	clock     clock.Clock
	ids       *snowflake.Node
}

func NewOrderService(r repository.OrderRepository, pub infra.PublisherInterface, clk clock.Clock, ids *snowflake.Node) *OrderService {
	return &OrderService{
		repo:      r,
		publisher: pub,
		clock:     clk,
		ids:       ids,
	}
}

// CreateOrder builds an order from a cart snapshot. The items are copied and
// the total recomputed, so later cart changes never reach the order.
func (u *OrderService) CreateOrder(ctx context.Context, items []domain.CartItem, paymentProof, pickupTime string) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := ValidateSubmission(paymentProof, pickupTime); err != nil {
		return nil, err
	}

	snapshot := append([]domain.CartItem(nil), items...)
	order := &domain.Order{
		ID:           "ORD-" + u.ids.Generate().String(),
		Items:        snapshot,
		Total:        cart.Total(snapshot),
		Status:       domain.StatusPaymentUploaded,
		PaymentProof: paymentProof,
		PickupTime:   pickupTime,
		CreatedAt:    u.clock.Now(),
		SellerID:     snapshot[0].MenuItem.SellerID,
	}

	if err := u.repo.Save(order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	u.publish(ctx, domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:   order.ID,
		SellerID:  order.SellerID,
		Total:     order.Total,
		ItemCount: len(order.Items),
		CreatedAt: order.CreatedAt,
	})

	return order, nil
}

func (u *OrderService) GetOrderById(id string) (*domain.Order, error) {
	o, err := u.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ListOrders returns every order, newest first.
func (u *OrderService) ListOrders() ([]domain.Order, error) {
	return u.repo.FindAll()
}

func (u *OrderService) UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	o, err := u.GetOrderById(id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	prev := o.Status
	o.Status = next
	if err := u.repo.Update(o); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	u.publish(ctx, domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   o.ID,
		From:      prev,
		To:        next,
		ChangedAt: u.clock.Now(),
	})
	return o, nil
}

// Advance moves an order one step along the lifecycle.
func (u *OrderService) Advance(ctx context.Context, id string) (*domain.Order, error) {
	o, err := u.GetOrderById(id)
	if err != nil {
		return nil, err
	}
	next, ok := NextStatus(o.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, o.Status)
	}
	return u.UpdateStatus(ctx, id, next)
}

func (u *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	return u.UpdateStatus(ctx, id, domain.StatusCancelled)
}

// Reset forgets every order; used when the owning session logs out.
func (u *OrderService) Reset() error {
	return u.repo.Clear()
}

func (u *OrderService) publish(ctx context.Context, key string, evt any) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.Publish(ctx, key, evt); err != nil {
		zap.L().Warn("failed to publish order event", zap.String("event", key), zap.Error(err))
		return
	}
	zap.L().Debug("published order event", zap.String("event", key))
}
