package schedule

import (
	"strings"
	"time"
)

// Direction says which side of a flight a commute is on.
type Direction string

const (
	// Before is the trip to the departure airport.
	Before Direction = "before"
	// After is the trip home from the arrival airport.
	After Direction = "after"
)

// CommutePair holds one duration per direction. A zero value means unset.
type CommutePair struct {
	Before time.Duration
	After  time.Duration
}

func (p CommutePair) get(d Direction) time.Duration {
	if d == Before {
		return p.Before
	}
	return p.After
}

// CommuteTable resolves how long the commute to or from an airport takes.
//
// Lookup order: an exact airport override, then the international default
// (skipped for domestic airports), then the built-in defaults. An override
// that is present wins even when it is zero; an unset international value is
// zero and falls through.
type CommuteTable struct {
	// Overrides is keyed by OverrideKey, e.g. "LIM_before". A zero entry means
	// no commute time.
	Overrides map[string]time.Duration
	// International applies to airports outside the domestic set.
	International CommutePair
}

// OverrideKey builds the Overrides key for an airport and direction.
func OverrideKey(airport string, d Direction) string {
	return strings.ToUpper(airport) + "_" + string(d)
}

// domesticAirports never receive the international default.
var domesticAirports = map[string]struct{}{
	"SCL": {},
	"AEP": {},
	"EZE": {},
	"GRU": {},
	"MEX": {},
}

// Built-in defaults.
const (
	defaultBefore    = 3*time.Hour + 30*time.Minute
	defaultBeforeHub = 2*time.Hour + 30*time.Minute
	defaultAfter     = time.Hour + 30*time.Minute
	defaultAfterHub  = time.Hour
)

// Duration returns the commute length for airport in direction d.
func (t CommuteTable) Duration(airport string, d Direction) time.Duration {
	airport = strings.ToUpper(airport)

	if v, ok := t.Overrides[OverrideKey(airport, d)]; ok && v >= 0 {
		return v
	}
	if _, domestic := domesticAirports[airport]; !domestic {
		if v := t.International.get(d); v > 0 {
			return v
		}
	}
	return builtinCommute(airport, d)
}

func builtinCommute(airport string, d Direction) time.Duration {
	if d == Before {
		if airport == "SCL" {
			return defaultBeforeHub
		}
		return defaultBefore
	}
	if airport == "SCL" || airport == "AEP" {
		return defaultAfterHub
	}
	return defaultAfter
}
