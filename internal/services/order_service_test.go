package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eatzone/internal/clock"
	"eatzone/internal/domain"
	"eatzone/internal/mocks"
	"eatzone/internal/repository/memory"
)

var testNow = time.Date(2025, 6, 2, 11, 45, 0, 0, time.UTC)

func newTestNode(t testing.TB) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func TestOrderService_CreateOrder(t *testing.T) {
	item := CreateMockMenuItem(TestItemID, TestItemName, TestItemPrice)

	tests := []struct {
		name          string
		items         []domain.CartItem
		proof         string
		pickup        string
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockPublisher)
		expectedError error
		expectedTotal int64
	}{
		{
			name:   "successful order creation",
			items:  []domain.CartItem{{MenuItem: item, Quantity: 2}},
			proof:  TestProof,
			pickup: TestPickup,
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockPub *mocks.MockPublisher) {
				mockRepo.On("Save", mock.AnythingOfType("*domain.Order")).Return(nil)
				mockPub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.MatchedBy(func(evt domain.OrderCreatedEvent) bool {
					return evt.Total == 30000 && evt.SellerID == TestSellerID && evt.ItemCount == 1
				})).Return(nil)
			},
			expectedTotal: 30000,
		},
		{
			name:   "publish failure does not fail the order",
			items:  []domain.CartItem{{MenuItem: item, Quantity: 1}},
			proof:  TestProof,
			pickup: TestPickup,
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockPub *mocks.MockPublisher) {
				mockRepo.On("Save", mock.AnythingOfType("*domain.Order")).Return(nil)
				mockPub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(errors.New("broker down"))
			},
			expectedTotal: 15000,
		},
		{
			name:          "missing payment proof",
			items:         []domain.CartItem{{MenuItem: item, Quantity: 2}},
			pickup:        TestPickup,
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockPublisher) {},
			expectedError: ErrMissingPaymentProof,
		},
		{
			name:          "missing pickup time",
			items:         []domain.CartItem{{MenuItem: item, Quantity: 2}},
			proof:         TestProof,
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockPublisher) {},
			expectedError: ErrMissingPickupTime,
		},
		{
			name:          "empty cart",
			proof:         TestProof,
			pickup:        TestPickup,
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockPublisher) {},
			expectedError: ErrEmptyCart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			mockPublisher := new(mocks.MockPublisher)
			tt.setupMocks(mockRepo, mockPublisher)

			service := NewOrderService(mockRepo, mockPublisher, clock.NewFake(testNow), newTestNode(t))
			result, err := service.CreateOrder(context.Background(), tt.items, tt.proof, tt.pickup)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.Regexp(t, `^ORD-\d+$`, result.ID)
				assert.Equal(t, tt.expectedTotal, result.Total)
				assert.Equal(t, domain.StatusPaymentUploaded, result.Status)
				assert.Equal(t, tt.proof, result.PaymentProof)
				assert.Equal(t, tt.pickup, result.PickupTime)
				assert.Equal(t, TestSellerID, result.SellerID)
				assert.Equal(t, testNow, result.CreatedAt)
			}

			mockRepo.AssertExpectations(t)
			mockPublisher.AssertExpectations(t)
		})
	}
}

func TestOrderService_CreateOrder_RepositoryError(t *testing.T) {
	mockRepo := new(mocks.MockOrderRepository)
	mockPublisher := new(mocks.MockPublisher)
	mockRepo.On("Save", mock.AnythingOfType("*domain.Order")).Return(errors.New("database error"))

	service := NewOrderService(mockRepo, mockPublisher, clock.NewFake(testNow), newTestNode(t))
	items := []domain.CartItem{{MenuItem: CreateMockMenuItem(TestItemID, TestItemName, TestItemPrice), Quantity: 1}}
	result, err := service.CreateOrder(context.Background(), items, TestProof, TestPickup)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	assert.Nil(t, result)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_SnapshotIsDetached(t *testing.T) {
	service := NewOrderService(memory.NewOrderRepository(), nil, clock.NewFake(testNow), newTestNode(t))
	items := []domain.CartItem{
		{MenuItem: CreateMockMenuItem("1", "Nasi Goreng Spesial", 15000), Quantity: 2},
		{MenuItem: CreateMockMenuItem("2", "Mie Ayam Bakso", 12000), Quantity: 1},
	}

	order, err := service.CreateOrder(context.Background(), items, TestProof, TestPickup)
	require.NoError(t, err)

	items[0].Quantity = 10
	items[1].MenuItem.Price = 1

	stored, err := service.GetOrderById(order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42000), stored.Total)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, int64(12000), stored.Items[1].MenuItem.Price)
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name          string
		proof         string
		pickup        string
		expectedError error
	}{
		{name: "complete", proof: TestProof, pickup: TestPickup},
		{name: "whitespace is still a value", proof: " ", pickup: " "},
		{name: "empty proof", pickup: TestPickup, expectedError: ErrMissingPaymentProof},
		{name: "empty pickup time", proof: TestProof, expectedError: ErrMissingPickupTime},
		{name: "both empty", expectedError: ErrMissingPaymentProof},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission(tt.proof, tt.pickup)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOrderService_GetOrderById(t *testing.T) {
	tests := []struct {
		name          string
		orderId       string
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError error
	}{
		{
			name:    "successful order retrieval",
			orderId: "ORD-1",
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", "ORD-1").Return(CreateMockOrder("ORD-1", 30000, domain.StatusPaymentUploaded, testNow), nil)
			},
		},
		{
			name:    "order not found",
			orderId: "ORD-404",
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", "ORD-404").Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
		{
			name:    "repository error",
			orderId: "ORD-1",
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", "ORD-1").Return(nil, errors.New("storage unavailable"))
			},
			expectedError: errors.New("storage unavailable"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			tt.setupMocks(mockRepo)

			service := NewOrderService(mockRepo, new(mocks.MockPublisher), clock.NewFake(testNow), newTestNode(t))
			result, err := service.GetOrderById(tt.orderId)

			if tt.expectedError != nil {
				assert.Error(t, err)
				if tt.expectedError == ErrOrderNotFound {
					assert.Equal(t, ErrOrderNotFound, err)
				} else {
					assert.Contains(t, err.Error(), tt.expectedError.Error())
				}
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.orderId, result.ID)
				assert.Equal(t, int64(30000), result.Total)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}{
		{name: "uploaded to confirmed", from: domain.StatusPaymentUploaded, to: domain.StatusConfirmed, allowed: true},
		{name: "confirmed to ready", from: domain.StatusConfirmed, to: domain.StatusReady, allowed: true},
		{name: "ready to completed", from: domain.StatusReady, to: domain.StatusCompleted, allowed: true},
		{name: "pending to uploaded", from: domain.StatusPendingPayment, to: domain.StatusPaymentUploaded, allowed: true},
		{name: "cancel while uploaded", from: domain.StatusPaymentUploaded, to: domain.StatusCancelled, allowed: true},
		{name: "cancel while ready", from: domain.StatusReady, to: domain.StatusCancelled, allowed: true},
		{name: "skip a step", from: domain.StatusPaymentUploaded, to: domain.StatusReady},
		{name: "go backwards", from: domain.StatusReady, to: domain.StatusConfirmed},
		{name: "cancel completed", from: domain.StatusCompleted, to: domain.StatusCancelled},
		{name: "revive cancelled", from: domain.StatusCancelled, to: domain.StatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			mockPublisher := new(mocks.MockPublisher)
			mockRepo.On("FindByID", "ORD-1").Return(CreateMockOrder("ORD-1", 15000, tt.from, testNow), nil)
			if tt.allowed {
				mockRepo.On("Update", mock.MatchedBy(func(o *domain.Order) bool { return o.Status == tt.to })).Return(nil)
				mockPublisher.On("Publish", mock.Anything, domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
					OrderID: "ORD-1", From: tt.from, To: tt.to, ChangedAt: testNow,
				}).Return(nil)
			}

			service := NewOrderService(mockRepo, mockPublisher, clock.NewFake(testNow), newTestNode(t))
			result, err := service.UpdateStatus(context.Background(), "ORD-1", tt.to)

			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, result.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Nil(t, result)
				mockRepo.AssertNotCalled(t, "Update", mock.Anything)
			}
			mockRepo.AssertExpectations(t)
			mockPublisher.AssertExpectations(t)
		})
	}
}

func TestOrderService_AdvanceThroughLifecycle(t *testing.T) {
	service := NewOrderService(memory.NewOrderRepository(), nil, clock.NewFake(testNow), newTestNode(t))
	items := []domain.CartItem{{MenuItem: CreateMockMenuItem(TestItemID, TestItemName, TestItemPrice), Quantity: 1}}
	order, err := service.CreateOrder(context.Background(), items, TestProof, TestPickup)
	require.NoError(t, err)

	for _, want := range []domain.OrderStatus{domain.StatusConfirmed, domain.StatusReady, domain.StatusCompleted} {
		o, err := service.Advance(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, want, o.Status)
	}

	_, err = service.Advance(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = service.Cancel(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = service.Advance(context.Background(), "ORD-missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ListOrdersNewestFirstAndReset(t *testing.T) {
	clk := clock.NewFake(testNow)
	service := NewOrderService(memory.NewOrderRepository(), nil, clk, newTestNode(t))
	items := []domain.CartItem{{MenuItem: CreateMockMenuItem(TestItemID, TestItemName, TestItemPrice), Quantity: 1}}

	first, err := service.CreateOrder(context.Background(), items, TestProof, TestPickup)
	require.NoError(t, err)
	clk.Advance(time.Minute)
	second, err := service.CreateOrder(context.Background(), items, TestProof, "13:00")
	require.NoError(t, err)

	orders, err := service.ListOrders()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)

	require.NoError(t, service.Reset())
	orders, err = service.ListOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestNextStatusNeverProducesPendingPayment(t *testing.T) {
	for from := range transitions {
		next, ok := NextStatus(from)
		require.True(t, ok)
		assert.NotEqual(t, domain.StatusPendingPayment, next)
		assert.True(t, CanTransition(from, domain.StatusCancelled))
	}
	_, ok := NextStatus(domain.StatusCompleted)
	assert.False(t, ok)
	_, ok = NextStatus(domain.StatusCancelled)
	assert.False(t, ok)
}

func BenchmarkOrderService_CreateOrder(b *testing.B) {
	service := NewOrderService(memory.NewOrderRepository(), nil, clock.Real{}, newTestNode(b))
	items := []domain.CartItem{{MenuItem: CreateMockMenuItem(TestItemID, TestItemName, TestItemPrice), Quantity: 2}}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = service.CreateOrder(context.Background(), items, TestProof, TestPickup)
		}
	})
}
