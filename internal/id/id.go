package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Source produces unique identifiers. The ingestion pipeline takes a Source
// so tests can substitute a deterministic one.
type Source func() string

// Random returns a Source backed by random UUIDs.
func Random() Source {
	return uuid.NewString
}

// Sequential returns a Source that yields prefix-1, prefix-2, ... for
// reproducible tests.
func Sequential(prefix string) Source {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// NewSessionID returns a fresh import session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
