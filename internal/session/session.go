// Package session hosts one buyer's state: who is logged in, which view is
// showing, the cart, the orders, the open chat and the payment countdown.
// Every handler runs under the session lock, so handlers never interleave.
// Timer callbacks take the same lock and check that the timer they belong
// to is still current before touching anything.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"eatzone/internal/cart"
	"eatzone/internal/domain"
	"eatzone/internal/services"
)

// Topic is the bus topic a session announces its changes on.
func Topic(sessionID string) string {
	return "session." + sessionID
}

type Session struct {
	id      string
	deps    Deps
	orders  *services.OrderService
	version atomic.Uint64

	mu          sync.Mutex
	closed      bool
	user        *domain.User
	view        domain.View
	cart        *cart.Cart
	sellerID    string
	chat        *services.Negotiation
	checkout    *services.Checkout
	checkoutGen int
	notice      string
}

func New(id string, deps Deps) *Session {
	return &Session{
		id:     id,
		deps:   deps,
		orders: services.NewOrderService(deps.OrderRepository(), deps.Publisher, deps.Clock, deps.IDs),
		view:   domain.ViewLogin,
		cart:   cart.New(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Version() uint64 {
	return s.version.Load()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) View() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// update runs fn under the session lock and announces the change if fn
// succeeded.
func (s *Session) update(fn func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	err := fn()
	s.mu.Unlock()

	if err == nil {
		s.notify()
	}
	return err
}

func (s *Session) notify() {
	v := s.version.Add(1)
	if s.deps.Bus == nil {
		return
	}
	_ = s.deps.Bus.Publish(context.Background(), Topic(s.id), v)
}

// Login authenticates against the shared directory and opens home. A session
// that already has a user is left untouched.
func (s *Session) Login(email, password string) error {
	return s.update(func() error {
		if s.user != nil {
			return ErrAlreadyAuthenticated
		}
		u, err := s.deps.Auth.Login(email, password)
		if err != nil {
			return err
		}
		s.user = u
		s.transition(domain.ViewHome)
		return nil
	})
}

func (s *Session) Register(name, email, password, confirm string) error {
	return s.update(func() error {
		if s.user != nil {
			return ErrAlreadyAuthenticated
		}
		u, err := s.deps.Auth.Register(name, email, password, confirm)
		if err != nil {
			return err
		}
		s.user = u
		s.transition(domain.ViewHome)
		return nil
	})
}

// Logout forgets the user together with the cart and the orders.
func (s *Session) Logout() error {
	return s.update(func() error {
		s.transition(domain.ViewLogin)
		s.user = nil
		s.sellerID = ""
		s.cart.Clear()
		return s.orders.Reset()
	})
}

// Navigate switches the current view. Without a user only login and register
// are reachable; with one they redirect home. The chat view needs a selected
// seller and falls back to home without one.
func (s *Session) Navigate(to domain.View) error {
	if !to.Valid() {
		return ErrInvalidView
	}
	return s.update(func() error {
		if s.user == nil {
			if !to.Public() {
				return ErrNotAuthenticated
			}
			s.transition(to)
			return nil
		}

		switch {
		case to.Public():
			to = domain.ViewHome
		case to == domain.ViewChat && s.sellerID == "":
			to = domain.ViewHome
		}
		s.transition(to)
		if to == domain.ViewChat && s.chat == nil {
			s.chat = s.newNegotiation(s.sellerID)
		}
		return nil
	})
}

// OpenChat starts a fresh conversation with sellerID. Reopening the chat
// that is already showing keeps it; any other seller replaces it.
func (s *Session) OpenChat(sellerID string) error {
	return s.update(func() error {
		if s.user == nil {
			return ErrNotAuthenticated
		}
		if !s.deps.Catalog.HasSeller(sellerID) {
			return ErrSellerNotFound
		}
		if s.view == domain.ViewChat && s.chat != nil && s.sellerID == sellerID {
			return nil
		}

		s.transition(domain.ViewChat)
		s.closeChat()
		s.sellerID = sellerID
		s.chat = s.newNegotiation(sellerID)
		return nil
	})
}

// CloseChat leaves the chat for home, discarding the conversation.
func (s *Session) CloseChat() error {
	return s.update(func() error {
		if s.view != domain.ViewChat || s.chat == nil {
			return ErrNoActiveChat
		}
		s.transition(domain.ViewHome)
		return nil
	})
}

func (s *Session) SendMessage(text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.user == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	chat := s.chat
	s.mu.Unlock()

	if chat == nil {
		return ErrNoActiveChat
	}
	// the negotiation announces its own changes
	return chat.Send(text)
}

func (s *Session) AddToCart(itemID string, quantity int) error {
	return s.update(func() error {
		if s.user == nil {
			return ErrNotAuthenticated
		}
		item, ok := s.deps.Catalog.Item(itemID)
		if !ok {
			return ErrItemNotFound
		}
		s.cart.Add(item, quantity)
		return nil
	})
}

// UpdateQuantity sets an absolute quantity; zero or less removes the entry.
// Emptying the cart abandons a running checkout.
func (s *Session) UpdateQuantity(itemID string, quantity int) error {
	return s.update(func() error {
		if s.user == nil {
			return ErrNotAuthenticated
		}
		s.cart.UpdateQuantity(itemID, quantity)
		if s.cart.Len() == 0 {
			s.cancelCheckout()
		}
		return nil
	})
}

// BeginCheckout opens the cart view and starts the payment countdown. A
// countdown that is already running is left alone.
func (s *Session) BeginCheckout() error {
	return s.update(func() error {
		if s.user == nil {
			return ErrNotAuthenticated
		}
		if s.cart.Len() == 0 {
			return services.ErrEmptyCart
		}
		s.transition(domain.ViewCart)
		if s.checkout != nil {
			return nil
		}

		s.checkoutGen++
		gen := s.checkoutGen
		s.checkout = services.StartCheckout(s.deps.Clock, s.deps.Checkout.Ticks, s.deps.Checkout.TickInterval, services.CheckoutHooks{
			OnTick:   func(int) { s.notify() },
			OnExpire: func() { s.expireCheckout(gen) },
		})
		return nil
	})
}

func (s *Session) CancelCheckout() error {
	return s.update(func() error {
		if s.checkout == nil {
			return services.ErrCheckoutInactive
		}
		s.cancelCheckout()
		return nil
	})
}

// SubmitCheckout turns the cart into an order. A rejected submission leaves
// the cart, the orders and the countdown as they were.
func (s *Session) SubmitCheckout(ctx context.Context, paymentProof, pickupTime string) (*domain.Order, error) {
	var order *domain.Order
	err := s.update(func() error {
		if s.user == nil {
			return ErrNotAuthenticated
		}
		if s.checkout == nil {
			return services.ErrCheckoutInactive
		}
		if err := services.ValidateSubmission(paymentProof, pickupTime); err != nil {
			return err
		}
		if s.cart.Len() == 0 {
			return services.ErrEmptyCart
		}
		// loses to an expiry that fired but has not taken the lock yet
		if !s.checkout.Hold() {
			return services.ErrCheckoutInactive
		}

		o, err := s.orders.CreateOrder(ctx, s.cart.Snapshot(), paymentProof, pickupTime)
		if err != nil {
			s.checkout.Release()
			return err
		}
		s.checkout.Complete()
		s.checkout = nil
		s.cart.Clear()
		s.transition(domain.ViewOrders)
		order = o
		return nil
	})
	return order, err
}

// Orders lists the session's orders, newest first.
func (s *Session) Orders() ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, ErrNotAuthenticated
	}
	return s.orders.ListOrders()
}

// UpdateOrderStatus plays the seller: it moves an order to status, or one
// step forward when status is empty.
func (s *Session) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	var order *domain.Order
	err := s.update(func() error {
		if s.user == nil {
			return ErrNotAuthenticated
		}
		var err error
		if status == "" {
			order, err = s.orders.Advance(ctx, orderID)
		} else {
			order, err = s.orders.UpdateStatus(ctx, orderID, status)
		}
		return err
	})
	return order, err
}

// Close cancels every timer the session owns. Late callbacks find the
// session closed and do nothing.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelCheckout()
	s.closeChat()
	s.mu.Unlock()

	s.notify()
}

func (s *Session) Render() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id,
		Version:   s.version.Load(),
		View:      s.view,
		CartCount: s.cart.Count(),
		Notice:    s.notice,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}

	switch s.view {
	case domain.ViewCart:
		cv := &CartView{Items: s.cart.Items(), Total: s.cart.Total()}
		if s.checkout != nil {
			cv.Checkout = &CheckoutView{Remaining: s.checkout.Remaining(), StartedAt: s.checkout.StartedAt()}
		}
		snap.Cart = cv
	case domain.ViewChat:
		if s.chat != nil {
			snap.Chat = &ChatView{
				SellerID:   s.sellerID,
				SellerName: s.deps.Catalog.SellerName(s.sellerID),
				Messages:   s.chat.Messages(),
				Awaiting:   s.chat.Awaiting(),
			}
		}
	case domain.ViewOrders:
		orders, err := s.orders.ListOrders()
		if err == nil {
			snap.Orders = &OrdersView{Items: NewOrderViews(orders)}
		}
	}
	return snap
}

// transition must be called with s.mu held. Leaving the cart stops the
// countdown and leaving the chat ends the conversation.
func (s *Session) transition(to domain.View) {
	if s.view == domain.ViewCart && to != domain.ViewCart {
		s.cancelCheckout()
	}
	if s.view == domain.ViewChat && to != domain.ViewChat {
		s.closeChat()
	}
	s.view = to
	s.notice = ""
}

func (s *Session) cancelCheckout() {
	if s.checkout == nil {
		return
	}
	s.checkout.Cancel()
	s.checkout = nil
}

func (s *Session) closeChat() {
	if s.chat == nil {
		return
	}
	s.chat.Close()
	s.chat = nil
}

func (s *Session) newNegotiation(sellerID string) *services.Negotiation {
	return services.NewNegotiation(sellerID, s.deps.Clock, s.deps.Rand, s.deps.Negotiation, s.notify)
}

func (s *Session) expireCheckout(gen int) {
	s.mu.Lock()
	if s.closed || s.checkout == nil || gen != s.checkoutGen {
		s.mu.Unlock()
		return
	}
	s.checkout = nil
	s.transition(domain.ViewCart)
	s.notice = NoticeCheckoutExpired
	s.mu.Unlock()

	s.notify()
}
