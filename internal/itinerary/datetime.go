package itinerary

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// monthAbbreviations maps the itinerary locale's month abbreviations to months.
var monthAbbreviations = map[string]time.Month{
	"ene": time.January,
	"feb": time.February,
	"mar": time.March,
	"abr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"ago": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dic": time.December,
}

var (
	// "lu., mar. 23": weekday abbreviation, month abbreviation, day.
	dateTokenPattern = regexp.MustCompile(`(?i)[a-z]+\.,\s+([a-z]+)\.\s+(\d+)`)
	timeTokenPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})`)
	yearAnchor       = regexp.MustCompile(`,\s*(\d{4})`)
)

// YearAnchor returns the first four-digit year that follows a comma anywhere in
// text, e.g. the 2026 in "mar. 23 - mar. 27, 2026".
func YearAnchor(text string) (int, bool) {
	m := yearAnchor.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// Resolver turns date and time tokens into wall clock timestamps using one
// year for the whole document.
//
// An itinerary that crosses a year boundary gets the anchored year on every
// leg, so one side of the boundary lands in the wrong year.
type Resolver struct {
	year     int
	anchored bool
}

// NewResolver anchors the year from text, falling back to now().Year().
func NewResolver(text string, now func() time.Time) Resolver {
	if year, ok := YearAnchor(text); ok {
		return Resolver{year: year, anchored: true}
	}
	if now == nil {
		now = time.Now
	}
	return Resolver{year: now().Year()}
}

// Year returns the year applied to every resolved date.
func (r Resolver) Year() int {
	return r.year
}

// Anchored reports whether the year came from the document text.
func (r Resolver) Anchored() bool {
	return r.anchored
}

// Resolve combines a date token like "lu., mar. 23" with a time token like
// "18:30". It reports false when either token does not parse.
func (r Resolver) Resolve(dateToken, timeToken string) (Wallclock, bool) {
	dm := dateTokenPattern.FindStringSubmatch(dateToken)
	if dm == nil {
		return Wallclock{}, false
	}
	month, ok := monthAbbreviations[strings.ToLower(dm[1])]
	if !ok {
		return Wallclock{}, false
	}
	day, err := strconv.Atoi(dm[2])
	if err != nil {
		return Wallclock{}, false
	}

	tm := timeTokenPattern.FindStringSubmatch(timeToken)
	if tm == nil {
		return Wallclock{}, false
	}
	hour, _ := strconv.Atoi(tm[1])
	minute, _ := strconv.Atoi(tm[2])

	w := Wallclock{Year: r.year, Month: month, Day: day, Hour: hour, Minute: minute}
	if !w.valid() {
		return Wallclock{}, false
	}
	return w, true
}

// valid rejects values time.Date would silently normalize, like Feb 30 or 24:10.
func (w Wallclock) valid() bool {
	if w.Hour > 23 || w.Minute > 59 || w.Day < 1 {
		return false
	}
	t := time.Date(w.Year, w.Month, w.Day, 0, 0, 0, 0, time.UTC)
	return t.Month() == w.Month && t.Day() == w.Day
}
