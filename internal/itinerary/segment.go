package itinerary

import (
	"regexp"
	"strings"
)

// confirmedKeyword closes every booking line in the supported itineraries.
const confirmedKeyword = "CONFIRMADO"

var (
	flightAnchor = regexp.MustCompile(`(?i)(?:LAN AIRLINES|LATAM AIRLINES|AVIANCA|SKY|COPA AIRLINES)\s+([A-Z]{2}\s*\d{3,4})\s+` + confirmedKeyword)
	hotelAnchor  = regexp.MustCompile(`(?i)(CASA ANDINA|NH COLLECTION|HOTEL|MARRIOTT|HILTON|HYATT|SHERATON|RADISSON|IBIS|HOLIDAY INN)([^\n]*?)\s+` + confirmedKeyword)

	reservationPattern = regexp.MustCompile(`Localizador:\s*([A-Z0-9]+)`)
	ticketPattern      = regexp.MustCompile(`Billete electrónico:\s*(\d+)`)

	departurePattern   = regexp.MustCompile(`(?i)SALIDA\s+([a-z]+\.,\s+[a-z]+\.\s+\d+)\s*\|\s*(\d{1,2}:\d{2})`)
	arrivalPattern     = regexp.MustCompile(`(?i)LLEGADA\s+([a-z]+\.,\s+[a-z]+\.\s+\d+)\s*\|\s*(\d{1,2}:\d{2})`)
	originPattern      = regexp.MustCompile(`(?s)SALIDA.*?\n.*?\n.*?\(([A-Z]{3})\)`)
	destinationPattern = regexp.MustCompile(`(?s)LLEGADA.*?\n.*?\n.*?\(([A-Z]{3})\)`)

	supplierConfirmationPattern = regexp.MustCompile(`Confirmación de proveedor:\s*([A-Z0-9]+)`)
	addressPattern              = regexp.MustCompile(`Dirección:\s*([^\n]+)`)
	phonePattern                = regexp.MustCompile(`Teléfono:\s*([^\n]+)`)

	// Hotel dates sit alone on their line; flight dates are followed by "| HH:MM".
	checkInPattern  = regexp.MustCompile(`(?i)ENTRADA\s*\n\s*([a-z]+\.,\s+[a-z]+\.\s+\d+)\s*\n`)
	checkOutPattern = regexp.MustCompile(`(?i)SALIDA\s*\n\s*([a-z]+\.,\s+[a-z]+\.\s+\d+)\s*\n`)
)

const (
	rateLabel  = "Descripción de la tarifa:"
	notesLabel = "Notas:"

	defaultCheckInTime  = "15:00"
	defaultCheckOutTime = "12:00"
)

// FlightWindow is a flight confirmation anchor and the text describing it.
// Flight details precede their confirmation line, so Window runs from the end
// of the previous flight anchor (or the document start) to this anchor.
type FlightWindow struct {
	FlightNumber string
	Start        int
	End          int
	Window       string
}

// HotelWindow is a hotel confirmation anchor with the text on both sides.
// Stay dates precede the hotel name while contact and rate details follow it.
type HotelWindow struct {
	Name   string
	Start  int
	End    int
	Before string
	After  string
}

// FlightAnchors scans text for flight confirmation lines in document order.
func FlightAnchors(text string) []FlightWindow {
	matches := flightAnchor.FindAllStringSubmatchIndex(text, -1)
	windows := make([]FlightWindow, 0, len(matches))

	prevEnd := 0
	for _, m := range matches {
		windows = append(windows, FlightWindow{
			FlightNumber: strings.ReplaceAll(text[m[2]:m[3]], " ", ""),
			Start:        m[0],
			End:          m[1],
			Window:       text[prevEnd:m[0]],
		})
		prevEnd = m[1]
	}
	return windows
}

// HotelAnchors scans text for hotel confirmation lines in document order.
func HotelAnchors(text string) []HotelWindow {
	matches := hotelAnchor.FindAllStringSubmatchIndex(text, -1)
	windows := make([]HotelWindow, 0, len(matches))

	for i, m := range matches {
		beforeStart := 0
		if i > 0 {
			beforeStart = matches[i-1][1]
		}
		afterEnd := len(text)
		if i+1 < len(matches) {
			afterEnd = matches[i+1][0]
		}

		windows = append(windows, HotelWindow{
			Name:   strings.TrimSpace(text[m[2]:m[3]] + text[m[4]:m[5]]),
			Start:  m[0],
			End:    m[1],
			Before: text[beforeStart:m[0]],
			After:  text[m[1]:afterEnd],
		})
	}
	return windows
}

// Segmenter carves booking candidates out of extracted itinerary text.
// Candidates may have unresolved fields; Build decides which ones survive.
type Segmenter struct {
	text            string
	resolver        Resolver
	reservationCode string
	ticketNumber    string
}

// NewSegmenter prepares text for segmentation, resolving document-wide fields
// (year anchor, reservation code, ticket number) once.
func NewSegmenter(text string, resolver Resolver) *Segmenter {
	return &Segmenter{
		text:            text,
		resolver:        resolver,
		reservationCode: firstSubmatch(reservationPattern, text),
		ticketNumber:    firstSubmatch(ticketPattern, text),
	}
}

// Flights returns one candidate per flight anchor, in document order.
func (s *Segmenter) Flights() []FlightRecord {
	anchors := FlightAnchors(s.text)
	flights := make([]FlightRecord, 0, len(anchors))

	for _, a := range anchors {
		f := FlightRecord{
			FlightNumber:    a.FlightNumber,
			ReservationCode: s.reservationCode,
			TicketNumber:    s.ticketNumber,
			Origin:          firstSubmatch(originPattern, a.Window),
			Destination:     firstSubmatch(destinationPattern, a.Window),
		}
		if m := departurePattern.FindStringSubmatch(a.Window); m != nil {
			f.Departure, _ = s.resolver.Resolve(m[1], m[2])
		}
		if m := arrivalPattern.FindStringSubmatch(a.Window); m != nil {
			f.Arrival, _ = s.resolver.Resolve(m[1], m[2])
		}
		flights = append(flights, f)
	}
	return flights
}

// Hotels returns one candidate per hotel anchor, in document order.
func (s *Segmenter) Hotels() []HotelRecord {
	anchors := HotelAnchors(s.text)
	hotels := make([]HotelRecord, 0, len(anchors))

	for _, a := range anchors {
		h := HotelRecord{
			Name:               a.Name,
			ConfirmationNumber: firstSubmatch(supplierConfirmationPattern, a.After),
			Address:            strings.TrimSpace(firstSubmatch(addressPattern, a.After)),
			Phone:              strings.TrimSpace(firstSubmatch(phonePattern, a.After)),
			Details:            rateDescription(a.After),
		}
		h.TimeZone = HotelTimeZone(h.Address)

		// Several bookings can share the before-window; the match closest to
		// the hotel name belongs to it.
		if date := lastSubmatch(checkInPattern, a.Before); date != "" {
			h.CheckIn, _ = s.resolver.Resolve(date, defaultCheckInTime)
		}
		if date := lastSubmatch(checkOutPattern, a.Before); date != "" {
			h.CheckOut, _ = s.resolver.Resolve(date, defaultCheckOutTime)
		}
		hotels = append(hotels, h)
	}
	return hotels
}

// rateDescription returns the lines following the rate label up to the first
// blank line or the notes label.
func rateDescription(after string) string {
	idx := strings.Index(after, rateLabel)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(after[idx+len(rateLabel):], " \t\r\n\f\v")
	if rest == "" {
		return ""
	}

	var block []string
	for i, line := range strings.Split(rest, "\n") {
		if line == "" || (i > 0 && strings.HasPrefix(line, notesLabel)) {
			break
		}
		block = append(block, line)
	}
	return strings.TrimSpace(strings.Join(block, "\n"))
}

func firstSubmatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func lastSubmatch(re *regexp.Regexp, s string) string {
	all := re.FindAllStringSubmatch(s, -1)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1][1]
}
