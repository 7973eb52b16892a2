package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("account", "checking").Msg("staged import")

	out := buf.String()
	assert.Contains(t, out, `"account":"checking"`)
	assert.Contains(t, out, "staged import")
}

func TestNopProducesNothing(t *testing.T) {
	log := Nop()
	log.Error().Msg("dropped")
	// No panic and nothing observable is the contract.
}
