package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequential(t *testing.T) {
	src := Sequential("tx")
	assert.Equal(t, "tx-1", src())
	assert.Equal(t, "tx-2", src())
	assert.Equal(t, "tx-3", src())
}

func TestSequential_IndependentCounters(t *testing.T) {
	a := Sequential("a")
	b := Sequential("b")
	assert.Equal(t, "a-1", a())
	assert.Equal(t, "b-1", b())
}

func TestRandom_Unique(t *testing.T) {
	src := Random()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := src()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
