package repository

import (
	"strings"

	"FinSignal/internal/domain/models"
)

// Timeframe is the signal horizon label, e.g. "3D".
type Timeframe string

const (
	TF1D Timeframe = "1D"
	TF3D Timeframe = "3D"
	TF7D Timeframe = "7D"
)

// IsValidTimeframe returns true if tf is a non-empty label with a parseable horizon.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := models.ParseHorizon(string(tf))
	return ok
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF3D }

// NormalizeTimeframe trims and upper-cases a raw label. Empty input stays
// empty so callers can reject it.
func NormalizeTimeframe(s string) Timeframe {
	return Timeframe(strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeSymbol trims and upper-cases a token symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
