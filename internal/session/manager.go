package session

import (
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"eatzone/internal/clock"
	"eatzone/internal/infra"
	"eatzone/internal/infra/events"
	"eatzone/internal/repository"
	"eatzone/internal/repository/memory"
	"eatzone/internal/services"
)

// Deps are shared by every session of a Manager.
type Deps struct {
	Catalog *services.CatalogService
	Auth    *services.AuthService
	Clock   clock.Clock
	Rand    services.Rand
	IDs     *snowflake.Node

	// Publisher receives order lifecycle events.
	Publisher infra.PublisherInterface
	// Bus carries the per-session change notifications.
	Bus *events.Bus
	// OrderRepository opens the order store of a new session.
	OrderRepository func() repository.OrderRepository

	Checkout    CheckoutConfig
	Negotiation services.NegotiationConfig
}

type CheckoutConfig struct {
	Ticks        int
	TickInterval time.Duration
}

func DefaultCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{Ticks: 60, TickInterval: time.Second}
}

type Manager struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(deps Deps) (*Manager, error) {
	if deps.Catalog == nil || deps.Auth == nil {
		return nil, errors.New("session manager needs a catalog and an auth directory")
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Rand == nil {
		deps.Rand = services.DefaultRand()
	}
	if deps.IDs == nil {
		node, err := snowflake.NewNode(1)
		if err != nil {
			return nil, err
		}
		deps.IDs = node
	}
	if deps.OrderRepository == nil {
		deps.OrderRepository = memory.NewOrderRepository
	}
	if deps.Checkout.Ticks <= 0 || deps.Checkout.TickInterval <= 0 {
		deps.Checkout = DefaultCheckoutConfig()
	}
	if len(deps.Negotiation.Keywords) == 0 {
		deps.Negotiation = services.DefaultNegotiationConfig()
	}

	return &Manager{
		deps:     deps,
		sessions: make(map[string]*Session),
	}, nil
}

// Create opens a session on the login view.
func (m *Manager) Create() *Session {
	s := New(uuid.NewString(), m.deps)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	zap.L().Info("session created", zap.String("session_id", s.ID()))
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	zap.L().Info("session closed", zap.String("session_id", id))
	return nil
}

// CloseAll stops every session; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	zap.L().Info("all sessions closed", zap.Int("count", len(sessions)))
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Subscribe calls fn with the new version number whenever session id changes.
func (m *Manager) Subscribe(id string, fn func(version uint64)) (func(), error) {
	if _, err := m.Get(id); err != nil {
		return nil, err
	}
	if m.deps.Bus == nil {
		return func() {}, nil
	}
	return m.deps.Bus.Subscribe(Topic(id), func(data any) {
		if v, ok := data.(uint64); ok {
			fn(v)
		}
	})
}
