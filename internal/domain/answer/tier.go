package answer

import (
	"fmt"
	"strings"
)

// Tier is the requested response length.
type Tier string

// Length tiers.
const (
	Short  Tier = "S"
	Medium Tier = "M"
	Long   Tier = "L"
)

// DefaultTier is used when the caller leaves the length empty.
const DefaultTier = Short

// WordBudget maps the tier to the word limit requested in the prompt.
func (t Tier) WordBudget() int {
	switch t {
	case Short:
		return 200
	case Medium:
		return 500
	default:
		return 1000
	}
}

// IsValid checks if the tier is one of S, M, L.
func (t Tier) IsValid() bool {
	return t == Short || t == Medium || t == Long
}

// ParseTier reads a tier case-insensitively. Empty yields DefaultTier.
func ParseTier(s string) (Tier, error) {
	if s == "" {
		return DefaultTier, nil
	}
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown response length %q (want S, M or L)", s)
	}
	return t, nil
}
