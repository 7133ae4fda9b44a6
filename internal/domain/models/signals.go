package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Persisted returns a copy of s carrying the store-assigned identity.
// CreatedAt is normalised to UTC millisecond precision so the value handed
// back to callers matches what a later read returns. ExpiresAt is derived
// from the timeframe when it names a horizon such as "3D" or "12H".
func (s Signal) Persisted(id string, at time.Time) Signal {
	out := s
	out.ID = id
	out.CreatedAt = at.UTC().Truncate(time.Millisecond)
	out.ExpiresAt = nil
	if d, ok := ParseHorizon(s.Timeframe); ok {
		exp := out.CreatedAt.Add(d)
		out.ExpiresAt = &exp
	}
	if out.Reasons == nil {
		out.Reasons = []string{}
	}
	return out
}

// ParseHorizon converts a timeframe label ("1H", "4H", "1D", "3D", "7D", "2W")
// into a duration. Labels are case-insensitive.
func ParseHorizon(tf string) (time.Duration, bool) {
	tf = strings.ToUpper(strings.TrimSpace(tf))
	if len(tf) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, false
	}
	var unit time.Duration
	switch tf[len(tf)-1] {
	case 'H':
		unit = time.Hour
	case 'D':
		unit = 24 * time.Hour
	case 'W':
		unit = 7 * 24 * time.Hour
	default:
		return 0, false
	}
	if int64(n) > math.MaxInt64/int64(unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}
