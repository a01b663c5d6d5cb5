package schedule

import (
	"strconv"
	"strings"
)

// ColorID is a Google Calendar event color identifier, "1" through "11".
type ColorID string

// Default colors for flight (and commute) events and hotel stays.
const (
	DefaultFlightColor ColorID = "11"
	DefaultHotelColor  ColorID = "6"
)

// paletteRGB holds the reference swatch for every color identifier. The
// calendar API only accepts the identifier; the RGB value is for display and
// the ICS color extension.
var paletteRGB = map[ColorID]string{
	"1":  "#A4BDFC",
	"2":  "#7AE7BF",
	"3":  "#DBADFF",
	"4":  "#FF887C",
	"5":  "#FBD75B",
	"6":  "#0B8043",
	"7":  "#46D6DB",
	"8":  "#E1E1E1",
	"9":  "#5484ED",
	"10": "#FF6C00",
	"11": "#F6BF26",
}

// ParseColorID accepts "1".."11", ignoring surrounding whitespace and leading zeros.
func ParseColorID(s string) (ColorID, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	id := ColorID(strconv.Itoa(n))
	if _, ok := paletteRGB[id]; !ok {
		return "", false
	}
	return id, true
}

// Valid reports whether c is part of the palette.
func (c ColorID) Valid() bool {
	_, ok := paletteRGB[c]
	return ok
}

// RGB returns the "#RRGGBB" swatch for c, or "" for unknown identifiers.
func (c ColorID) RGB() string {
	return paletteRGB[c]
}

// Palette returns every color identifier in numeric order.
func Palette() []ColorID {
	ids := make([]ColorID, 0, len(paletteRGB))
	for i := 1; i <= len(paletteRGB); i++ {
		ids = append(ids, ColorID(strconv.Itoa(i)))
	}
	return ids
}
