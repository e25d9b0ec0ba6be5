package domain

import (
	"regexp"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2, 2006",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

var rangeSep = regexp.MustCompile(`(?i)\s*(?:–|-|\bto\b)\s*`)

// ParseDate reads a ride date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseClock reads a time of day and returns the offset from midnight.
func ParseClock(s string) (time.Duration, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// EndClock returns the last time in a "<start> - <end>" range. A single time
// is its own end.
func EndClock(timeRange string) (time.Duration, bool) {
	parts := clockParts(timeRange)
	if len(parts) == 0 {
		return 0, false
	}
	return ParseClock(parts[len(parts)-1])
}

// StartClock returns the first time in a "<start> - <end>" range.
func StartClock(timeRange string) (time.Duration, bool) {
	parts := clockParts(timeRange)
	if len(parts) == 0 {
		return 0, false
	}
	return ParseClock(parts[0])
}

func clockParts(timeRange string) []string {
	var out []string
	for _, p := range rangeSep.Split(strings.TrimSpace(timeRange), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TripEnd is the end-of-trip instant of a ride. When the date parses but the
// time does not, the trip ends at the end of that day. A range whose end is
// not after its start runs past midnight. ok is false when the date does not
// parse.
func TripEnd(date, timeRange string, loc *time.Location) (time.Time, bool) {
	day, ok := ParseDate(date, loc)
	if !ok {
		return time.Time{}, false
	}
	end, ok := EndClock(timeRange)
	if !ok {
		return day.AddDate(0, 0, 1), true
	}
	if len(clockParts(timeRange)) > 1 {
		if start, ok := StartClock(timeRange); ok && end <= start {
			return day.AddDate(0, 0, 1).Add(end), true
		}
	}
	return day.Add(end), true
}

// IsUpcoming reports whether the ride has not ended at now. Rides whose
// schedule cannot be read are always upcoming.
func (r Ride) IsUpcoming(now time.Time, loc *time.Location) bool {
	end, ok := TripEnd(r.Date, r.Time, loc)
	if !ok {
		return true
	}
	return end.After(now)
}

// Visible reports whether a viewer of the given gender may see rides
// restricted to allowed.
func Visible(allowed, viewerGender string) bool {
	return allowed == GenderAny || allowed == viewerGender
}
