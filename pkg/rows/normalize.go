package rows

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/campusops/rostersync/pkg/entities"
)

var (
	sectionCRNRe = regexp.MustCompile(`^\s*(\S+)\s*\(\s*\d+\s*\)\s*$`)
	clockRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp])\.?[Mm]?\.?$`)

	titleCaser = cases.Title(language.AmericanEnglish)
)

// exportDayLetters maps export day letters to canonical day codes.
// Exports use the same single-letter scheme the engine does.
var exportDayLetters = map[rune]entities.Day{
	'M': entities.Monday,
	'T': entities.Tuesday,
	'W': entities.Wednesday,
	'R': entities.Thursday,
	'F': entities.Friday,
	'S': entities.Saturday,
	'U': entities.Sunday,
}

// onlineMarkers are room or meeting values that mean "no physical
// room": the section is delivered online or does not meet.
var onlineMarkers = map[string]bool{
	"online":         true,
	"no room needed": true,
	"web":            true,
	"does not meet":  true,
	"tba":            true,
}

// isOnlineMarker reports whether a cell value is an explicit
// online/no-room marker rather than a real room or meeting pattern.
func isOnlineMarker(v string) bool {
	return onlineMarkers[strings.ToLower(strings.TrimSpace(v))]
}

// StripSectionCRN removes a redundant parenthesized identifier from a
// section token: "01 (33038)" becomes "01".
func StripSectionCRN(section string) string {
	if m := sectionCRNRe.FindStringSubmatch(section); m != nil {
		return m[1]
	}
	return strings.TrimSpace(section)
}

// SplitLastFirst splits a comma-separated "Last, First" instructor
// token. Without a comma the whole token is treated as a last name.
func SplitLastFirst(name string) (first, last string) {
	parts := strings.SplitN(name, ",", 2)
	last = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		first = strings.TrimSpace(parts[1])
	}
	return first, last
}

// ParseClock parses a 12-hour clock string like "9:00 am" into minutes
// since midnight.
func ParseClock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("unrecognized clock value %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	pm := m[3] == "P" || m[3] == "p"
	if hour == 12 {
		hour = 0
	}
	if pm {
		hour += 12
	}
	return hour*60 + minute, nil
}

// ParseDays parses a day-letter run like "MWF" into canonical days.
func ParseDays(s string) ([]entities.Day, error) {
	var days []entities.Day
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		d, ok := exportDayLetters[r]
		if !ok {
			return nil, fmt.Errorf("unrecognized day letter %q in %q", string(r), s)
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("empty day list")
	}
	return days, nil
}

// ParseMeetingSegment parses one export segment like
// "MWF 9:00 am - 9:50 am" into one pattern per day.
func ParseMeetingSegment(segment string) ([]entities.MeetingPattern, error) {
	fields := strings.Fields(segment)
	if len(fields) < 2 {
		return nil, fmt.Errorf("meeting segment %q too short", segment)
	}

	days, err := ParseDays(fields[0])
	if err != nil {
		return nil, err
	}

	times := strings.SplitN(strings.Join(fields[1:], " "), "-", 2)
	if len(times) != 2 {
		return nil, fmt.Errorf("meeting segment %q has no time range", segment)
	}
	start, err := ParseClock(times[0])
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(times[1])
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, fmt.Errorf("meeting segment %q ends before it starts", segment)
	}

	patterns := make([]entities.MeetingPattern, 0, len(days))
	for _, d := range days {
		patterns = append(patterns, entities.MeetingPattern{Day: d, StartMinute: start, EndMinute: end})
	}
	return patterns, nil
}

// ParseMeetingPatterns parses a semicolon-separated meeting pattern
// cell. Online markers and unparsable segments are skipped; the caller
// decides whether an empty result makes the row unusable.
func ParseMeetingPatterns(cell string) []entities.MeetingPattern {
	var patterns []entities.MeetingPattern
	for _, segment := range strings.Split(cell, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" || isOnlineMarker(segment) {
			continue
		}
		parsed, err := ParseMeetingSegment(segment)
		if err != nil {
			continue
		}
		patterns = append(patterns, parsed...)
	}
	entities.SortMeetings(patterns)
	return patterns
}

// RetitleName normalizes shouty or lowercase directory names ("SMITH",
// "smith") to title case while leaving mixed-case names ("McAllister",
// "de la Cruz") alone.
func RetitleName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if trimmed == strings.ToUpper(trimmed) || trimmed == strings.ToLower(trimmed) {
		return titleCaser.String(strings.ToLower(trimmed))
	}
	return trimmed
}
