package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBackend = errors.New("backend down")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(maxFailures int) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreakerWithWindow(maxFailures, 10*time.Second, time.Minute)
	cb.now = clock.Now
	return cb, clock
}

func failing() error { return errBackend }
func passing() error { return nil }

func TestOpensAfterTooManyFailures(t *testing.T) {
	cb, _ := newTestBreaker(2)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(failing), errBackend)
	}
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestHalfOpenProbeCloses(t *testing.T) {
	cb, clock := newTestBreaker(0)

	assert.Error(t, cb.Execute(failing))
	assert.Equal(t, StateOpen, cb.GetState())

	clock.Advance(11 * time.Second)
	assert.NoError(t, cb.Execute(passing))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenProbeFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker(0)

	assert.Error(t, cb.Execute(failing))
	clock.Advance(11 * time.Second)
	assert.ErrorIs(t, cb.Execute(failing), errBackend)
	assert.Equal(t, StateOpen, cb.GetState())
	assert.ErrorIs(t, cb.Execute(passing), ErrOpen)
}

func TestOldFailuresExpire(t *testing.T) {
	cb, clock := newTestBreaker(1)

	assert.Error(t, cb.Execute(failing))
	clock.Advance(2 * time.Minute)
	assert.Error(t, cb.Execute(failing))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
