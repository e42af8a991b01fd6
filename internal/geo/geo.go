package geo

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the geocoder has no results for an address.
	// The result is cached, so later lookups of the same address fail fast.
	ErrNotFound = errors.New("no coordinates found for address")
)

// Coordinate is a resolved latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Normalize canonicalizes an address string for cache keying.
// It is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
