package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()

	var first, second []any
	unsubFirst, err := bus.Subscribe("session.a", func(data any) { first = append(first, data) })
	require.NoError(t, err)
	_, err = bus.Subscribe("session.a", func(data any) { second = append(second, data) })
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), "session.a", "changed"))
	require.NoError(t, bus.Publish(context.Background(), "session.b", "ignored"))

	assert.Equal(t, []any{"changed"}, first)
	assert.Equal(t, []any{"changed"}, second)

	unsubFirst()
	unsubFirst()
	require.NoError(t, bus.Publish(context.Background(), "session.a", "again"))

	assert.Len(t, first, 1)
	assert.Equal(t, []any{"changed", "again"}, second)
	assert.True(t, bus.HasSubscribers("session.a"))
}

func TestBus_LastUnsubscribeDetachesTopic(t *testing.T) {
	bus := New()
	calls := 0
	unsub, err := bus.Subscribe("order.created", func(any) { calls++ })
	require.NoError(t, err)

	unsub()
	assert.False(t, bus.HasSubscribers("order.created"))
	require.NoError(t, bus.Publish(context.Background(), "order.created", nil))
	assert.Zero(t, calls)

	_, err = bus.Subscribe("order.created", func(any) { calls++ })
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), "order.created", 1))
	assert.Equal(t, 1, calls)
}

func TestBus_ResubscribeDeliversOnce(t *testing.T) {
	bus := New()
	for i := 0; i < 3; i++ {
		unsub, err := bus.Subscribe("session.a", func(any) {})
		require.NoError(t, err)
		unsub()
	}

	calls := 0
	_, err := bus.Subscribe("session.a", func(any) { calls++ })
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), "session.a", 1))
	assert.Equal(t, 1, calls)
	assert.Len(t, bus.dispatchers, 1)
}
