package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eatzone/internal/catalog"
	"eatzone/internal/domain"
	"eatzone/internal/services"
)

func TestManager_Lifecycle(t *testing.T) {
	env := newTestEnv(t, services.FixedRand(0.5))
	m := env.manager

	a := m.Create()
	b := m.Create()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, m.Len())

	got, err := m.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, m.Close(a.ID()))
	assert.True(t, a.Closed())
	_, err = m.Get(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(a.ID()), ErrSessionNotFound)

	_, err = m.Subscribe("missing", func(uint64) {})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	m.CloseAll()
	assert.Zero(t, m.Len())
	assert.True(t, b.Closed())
}

func TestNewManager_Defaults(t *testing.T) {
	_, err := NewManager(Deps{})
	assert.Error(t, err)

	auth, err := services.NewAuthService(nil)
	require.NoError(t, err)
	m, err := NewManager(Deps{Catalog: services.NewCatalogService(catalog.Default(), time.Minute), Auth: auth})
	require.NoError(t, err)

	assert.NotNil(t, m.deps.Clock)
	assert.NotNil(t, m.deps.Rand)
	assert.NotNil(t, m.deps.IDs)
	assert.Equal(t, DefaultCheckoutConfig(), m.deps.Checkout)
	assert.Equal(t, services.DefaultNegotiationConfig(), m.deps.Negotiation)
}

func TestManager_ResubscribeDeliversEachChangeOnce(t *testing.T) {
	env := newTestEnv(t, services.FixedRand(0.5))
	s := env.manager.Create()

	unsubscribe, err := env.manager.Subscribe(s.ID(), func(uint64) {})
	require.NoError(t, err)
	unsubscribe()

	var versions []uint64
	unsubscribe, err = env.manager.Subscribe(s.ID(), func(v uint64) { versions = append(versions, v) })
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, s.Navigate(domain.ViewRegister))
	assert.Equal(t, []uint64{1}, versions)
}
