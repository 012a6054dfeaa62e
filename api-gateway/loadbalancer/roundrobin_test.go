package loadbalancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundRobin_Next(t *testing.T) {
	rr := NewRoundRobin("onboarding", []string{"http://a", "http://b"})

	assert.Equal(t, "http://a", rr.Next())
	assert.Equal(t, "http://b", rr.Next())
	assert.Equal(t, "http://a", rr.Next())
	assert.Equal(t, 1, rr.Stats().CurrentIndex)
}

func TestRoundRobin_EmptyPool(t *testing.T) {
	rr := NewRoundRobin("onboarding", nil)
	assert.Empty(t, rr.Next())
	assert.Empty(t, rr.Servers())
}
