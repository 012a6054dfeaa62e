package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

var errBoom = errors.New("boom")

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	cb := New("backend", 2, time.Minute, withClock(c.now))

	assert.ErrorIs(t, cb.Call(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	cb := New("backend", 1, time.Second, withClock(c.now))
	require.Error(t, cb.Call(func() error { return errBoom }))
	require.Equal(t, StateOpen, cb.State())

	c.advance(2 * time.Second)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Call(func() error { return nil }))
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Zero(t, cb.Stats().Failures)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	cb := New("backend", 1, time.Second, withClock(c.now))
	require.Error(t, cb.Call(func() error { return errBoom }))

	c.advance(2 * time.Second)
	require.Error(t, cb.Call(func() error { return errBoom }))
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_FailurePredicate(t *testing.T) {
	ignored := errors.New("client error")
	cb := New("backend", 1, time.Minute, WithFailurePredicate(func(err error) bool {
		return err != nil && !errors.Is(err, ignored)
	}))

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Call(func() error { return ignored }), ignored)
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestManager_GetOrCreate(t *testing.T) {
	m := NewManager(3, time.Second)

	a := m.GetOrCreate("onboarding")
	assert.Same(t, a, m.GetOrCreate("onboarding"))
	assert.NotSame(t, a, m.GetOrCreate("catalog"))

	stats := m.AllStats()
	require.Len(t, stats, 2)
	assert.Equal(t, 3, stats["onboarding"].MaxFailures)
}
