package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startManager(t *testing.T) (*WebSocketManager, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	m := NewWebSocketManager()
	go m.Run(ctx)
	t.Cleanup(cancel)
	return m, cancel
}

func newTestClient(m *WebSocketManager, userID string, buf int) *Client {
	return &Client{ID: userID, Send: make(chan any, buf), Manager: m}
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		require.True(t, ok, "канал клиента закрыт")
		env, ok := msg.(Envelope)
		require.True(t, ok)
		return env
	case <-time.After(time.Second):
		t.Fatal("событие не доставлено")
		return Envelope{}
	}
}

func TestManager_DeliversToAllTabs(t *testing.T) {
	m, _ := startManager(t)
	tab1 := newTestClient(m, "u1", 4)
	tab2 := newTestClient(m, "u1", 4)
	other := newTestClient(m, "u2", 4)

	require.True(t, m.Register(tab1))
	require.True(t, m.Register(tab2))
	require.True(t, m.Register(other))
	assert.Eventually(t, func() bool { return m.GetClientCount() == 3 }, time.Second, 10*time.Millisecond)

	m.SendToUser("u1", "offer.created", map[string]string{"offer_id": "o1"})

	for _, c := range []*Client{tab1, tab2} {
		env := receive(t, c)
		assert.Equal(t, "offer.created", env.Event)
		assert.False(t, env.At.IsZero())
	}
	assert.Empty(t, other.Send)
}

func TestManager_UnregisterClosesSend(t *testing.T) {
	m, _ := startManager(t)
	c := newTestClient(m, "u1", 1)
	require.True(t, m.Register(c))
	assert.Eventually(t, func() bool { return m.IsClientConnected("u1") }, time.Second, 10*time.Millisecond)

	m.Unregister(c)
	assert.Eventually(t, func() bool { return !m.IsClientConnected("u1") }, time.Second, 10*time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestManager_DropsSlowClient(t *testing.T) {
	m, _ := startManager(t)
	c := newTestClient(m, "u1", 1)
	require.True(t, m.Register(c))
	assert.Eventually(t, func() bool { return m.IsClientConnected("u1") }, time.Second, 10*time.Millisecond)

	m.SendToUser("u1", "notification.new", 1)
	m.SendToUser("u1", "notification.new", 2)

	assert.Eventually(t, func() bool { return !m.IsClientConnected("u1") }, time.Second, 10*time.Millisecond)

	// Первое событие осталось в буфере, затем канал закрыт
	env := receive(t, c)
	assert.Equal(t, 1, env.Data)
	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestManager_StopsWithContext(t *testing.T) {
	m, cancel := startManager(t)
	c := newTestClient(m, "u1", 1)
	require.True(t, m.Register(c))
	assert.Eventually(t, func() bool { return m.IsClientConnected("u1") }, time.Second, 10*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return m.GetClientCount() == 0 }, time.Second, 10*time.Millisecond)

	assert.False(t, m.Register(newTestClient(m, "u2", 1)))
	m.Unregister(c)
}
