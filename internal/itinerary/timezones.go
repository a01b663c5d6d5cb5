package itinerary

import (
	"strings"
	"sync"
	"time"

	// Zone lookups must not depend on the host's zoneinfo files.
	_ "time/tzdata"
)

// DefaultTimeZone is used for airports and addresses that cannot be resolved.
const DefaultTimeZone = "UTC"

// airportTimeZones maps IATA codes to IANA zone names. Read-only after init.
var airportTimeZones = map[string]string{
	"SCL": "America/Santiago",
	"AEP": "America/Argentina/Buenos_Aires",
	"EZE": "America/Argentina/Buenos_Aires",
	"GRU": "America/Sao_Paulo",
	"GIG": "America/Sao_Paulo",
	"LIM": "America/Lima",
	"BOG": "America/Bogota",
	"MEX": "America/Mexico_City",
	"MIA": "America/New_York",
	"JFK": "America/New_York",
	"ATL": "America/New_York",
	"LAX": "America/Los_Angeles",
	"SFO": "America/Los_Angeles",
	"ORD": "America/Chicago",
	"DFW": "America/Chicago",
	"IAH": "America/Chicago",
	"CDG": "Europe/Paris",
	"LHR": "Europe/London",
	"MAD": "Europe/Madrid",
	"BCN": "Europe/Madrid",
	"FCO": "Europe/Rome",
	"AMS": "Europe/Amsterdam",
	"FRA": "Europe/Berlin",
	"MUC": "Europe/Berlin",
	"ZRH": "Europe/Zurich",
	"VIE": "Europe/Vienna",
	"IST": "Europe/Istanbul",
	"DXB": "Asia/Dubai",
	"DOH": "Asia/Qatar",
	"SIN": "Asia/Singapore",
	"HKG": "Asia/Hong_Kong",
	"NRT": "Asia/Tokyo",
	"HND": "Asia/Tokyo",
	"ICN": "Asia/Seoul",
	"PEK": "Asia/Shanghai",
	"PVG": "Asia/Shanghai",
	"SYD": "Australia/Sydney",
	"MEL": "Australia/Melbourne",
	"AKL": "Pacific/Auckland",
}

// AirportTimeZone returns the IANA zone name for an airport code.
// Unmapped codes resolve to UTC.
func AirportTimeZone(code string) string {
	if tz, ok := airportTimeZones[strings.ToUpper(code)]; ok {
		return tz
	}
	return DefaultTimeZone
}

// AirportLocation returns the loaded zone for an airport code.
func AirportLocation(code string) *time.Location {
	return loadLocation(AirportTimeZone(code))
}

// hotelZoneRule matches upper-cased city names or a raw ", XX" country suffix.
type hotelZoneRule struct {
	cities  []string
	country string
	zone    string
}

// hotelZoneRules are checked in order; the first hit wins.
var hotelZoneRules = []hotelZoneRule{
	{cities: []string{"LIMA", "SAN ISIDRO"}, country: ", PE", zone: "America/Lima"},
	{cities: []string{"BOGOTA", "BOGOTÁ"}, country: ", CO", zone: "America/Bogota"},
	{cities: []string{"SANTIAGO"}, country: ", CL", zone: "America/Santiago"},
	{cities: []string{"BUENOS AIRES"}, country: ", AR", zone: "America/Argentina/Buenos_Aires"},
}

// HotelTimeZone guesses a hotel's zone from its address text.
//
// The country suffix is a plain substring match against the raw address, so an
// address that happens to contain ", PE" elsewhere resolves to Lima.
func HotelTimeZone(address string) string {
	if address == "" {
		return DefaultTimeZone
	}
	upper := strings.ToUpper(address)
	for _, rule := range hotelZoneRules {
		for _, city := range rule.cities {
			if strings.Contains(upper, city) {
				return rule.zone
			}
		}
		if strings.Contains(address, rule.country) {
			return rule.zone
		}
	}
	return DefaultTimeZone
}

var (
	locationsMu sync.Mutex
	locations   = map[string]*time.Location{}
)

// loadLocation caches time.LoadLocation results. Unknown names fall back to UTC.
func loadLocation(name string) *time.Location {
	if name == "" || name == DefaultTimeZone {
		return time.UTC
	}

	locationsMu.Lock()
	defer locationsMu.Unlock()

	if loc, ok := locations[name]; ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}
	locations[name] = loc
	return loc
}
