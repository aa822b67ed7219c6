package mode

import (
	"fmt"
	"strings"
)

// Mode is the retrieval strategy.
type Mode string

// Retrieval mode constants.
const (
	// Text is lexical multi-field matching.
	Text Mode = "text"
	// Vector is approximate nearest-neighbour search over review embeddings.
	Vector Mode = "vector"
	// Hybrid runs Vector, then Text, and appends text hits not already present.
	Hybrid Mode = "hybrid"
)

// Default is the mode used when the caller leaves it empty.
const Default = Text

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Text || m == Vector || m == Hybrid
}

// Parse reads a mode case-insensitively ("Text", "vector", ...). Empty yields Default.
func Parse(s string) (Mode, error) {
	if s == "" {
		return Default, nil
	}
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown search mode %q (want text, vector or hybrid)", s)
	}
	return m, nil
}
