package entities

import (
	"fmt"
	"sort"
	"strings"
)

// Day is a canonical single-letter day code. Thursday is R, Saturday is
// S, and Sunday is U, matching registrar export conventions.
type Day string

// Canonical day codes in week order.
const (
	Monday    Day = "M"
	Tuesday   Day = "T"
	Wednesday Day = "W"
	Thursday  Day = "R"
	Friday    Day = "F"
	Saturday  Day = "S"
	Sunday    Day = "U"
)

// Days lists all canonical day codes in week order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayOrder = map[Day]int{
	Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Saturday: 5, Sunday: 6,
}

// Valid reports whether d is a canonical day code.
func (d Day) Valid() bool {
	_, ok := dayOrder[d]
	return ok
}

// Order returns the position of d within the week, Monday first.
// Unknown days sort last.
func (d Day) Order() int {
	if n, ok := dayOrder[d]; ok {
		return n
	}
	return len(dayOrder)
}

// MeetingPattern is one day/time segment of a schedule. Times are
// minutes since midnight so interval overlap checks are integer math.
type MeetingPattern struct {
	Day         Day `yaml:"day"`
	StartMinute int `yaml:"startMinute"`
	EndMinute   int `yaml:"endMinute"`
}

// Valid reports whether the pattern has a known day and a non-empty,
// in-range time interval.
func (m MeetingPattern) Valid() bool {
	return m.Day.Valid() &&
		m.StartMinute >= 0 && m.EndMinute <= 24*60 &&
		m.StartMinute < m.EndMinute
}

// Overlaps reports whether two patterns share a day and overlapping
// time window.
func (m MeetingPattern) Overlaps(o MeetingPattern) bool {
	return m.Day == o.Day && m.StartMinute < o.EndMinute && o.StartMinute < m.EndMinute
}

// String renders the pattern as e.g. "M 9:00 AM-9:50 AM".
func (m MeetingPattern) String() string {
	return fmt.Sprintf("%s %s-%s", m.Day, ClockString(m.StartMinute), ClockString(m.EndMinute))
}

// canonical renders a compact sortable encoding, e.g. "M0900-0950".
func (m MeetingPattern) canonical() string {
	return fmt.Sprintf("%s%02d%02d-%02d%02d",
		m.Day, m.StartMinute/60, m.StartMinute%60, m.EndMinute/60, m.EndMinute%60)
}

// ClockString formats minutes since midnight as a 12-hour clock string,
// e.g. 570 -> "9:30 AM".
func ClockString(minute int) string {
	h := minute / 60
	m := minute % 60
	suffix := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		suffix = "PM"
	case h > 12:
		h -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

// SortMeetings orders patterns by day then start time, in place.
func SortMeetings(ms []MeetingPattern) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Day != ms[j].Day {
			return ms[i].Day.Order() < ms[j].Day.Order()
		}
		if ms[i].StartMinute != ms[j].StartMinute {
			return ms[i].StartMinute < ms[j].StartMinute
		}
		return ms[i].EndMinute < ms[j].EndMinute
	})
}

// FormatMeetings renders a deterministic encoding of a pattern set,
// used inside schedule identity keys.
func FormatMeetings(ms []MeetingPattern) string {
	sorted := append([]MeetingPattern(nil), ms...)
	SortMeetings(sorted)
	parts := make([]string, len(sorted))
	for i, m := range sorted {
		parts[i] = m.canonical()
	}
	return strings.Join(parts, ",")
}
