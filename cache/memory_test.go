package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemory() (*Memory, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)}
	m := NewMemory()
	m.now = clock.now
	return m, clock
}

func TestMemory_PutGet(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	_, ok := m.Get(ctx, "autocomplete:aap")
	assert.False(t, ok)

	m.Put(ctx, "autocomplete:aap", []byte("v1"), time.Minute)
	got, ok := m.Get(ctx, "autocomplete:aap")
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	m.Put(ctx, "autocomplete:aap", []byte("v2"), time.Minute)
	got, _ = m.Get(ctx, "autocomplete:aap")
	assert.Equal(t, []byte("v2"), got, "last writer wins")
}

func TestMemory_CopiesValue(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	buf := []byte("abc")
	m.Put(ctx, "k", buf, time.Minute)
	buf[0] = 'z'

	got, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), got)
}

func TestMemory_Expiry(t *testing.T) {
	m, clock := newTestMemory()
	ctx := context.Background()

	m.Put(ctx, "k", []byte("v"), 15*time.Minute)

	clock.advance(15*time.Minute - time.Second)
	_, ok := m.Get(ctx, "k")
	assert.True(t, ok)

	clock.advance(time.Second)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, m.Len(), "expired entry dropped on read")
}

func TestMemory_NonPositiveTTLIgnored(t *testing.T) {
	m, _ := newTestMemory()
	m.Put(context.Background(), "k", []byte("v"), 0)
	assert.Zero(t, m.Len())
}

func TestMemory_Sweep(t *testing.T) {
	m, clock := newTestMemory()
	ctx := context.Background()

	m.Put(ctx, "short", []byte("1"), time.Minute)
	m.Put(ctx, "long", []byte("2"), time.Hour)

	clock.advance(2 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())

	_, ok := m.Get(ctx, "long")
	assert.True(t, ok)
}

func TestMemory_RunStopsOnCancel(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	c.Put(context.Background(), "k", []byte("v"), time.Minute)
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}
