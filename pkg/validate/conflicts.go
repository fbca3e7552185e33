package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/campusops/rostersync/pkg/entities"
)

// span is one meeting interval attributed to one schedule.
type span struct {
	sched *entities.Schedule
	m     entities.MeetingPattern
}

// overlapWindow is one detected overlap between two schedules.
type overlapWindow struct {
	day   entities.Day
	start int
	end   int
}

// TeachingConflicts scans the merged schedule set for any two sections
// taught by the same instructor whose meeting intervals overlap on the
// same day. The scan buckets spans by instructor and day before the
// pairwise comparison, so cost is bounded by bucket size rather than
// the size of the whole term.
//
// One warning is emitted per conflicting schedule pair, naming both
// sections, the day(s), and the overlap window.
func TeachingConflicts(schedules []*entities.Schedule) []Problem {
	buckets := make(map[string][]span)
	for _, s := range schedules {
		instructor := instructorKey(s)
		if instructor == "" {
			continue
		}
		for _, m := range s.Meetings {
			if !m.Valid() {
				continue
			}
			key := instructor + "|" + string(m.Day)
			buckets[key] = append(buckets[key], span{sched: s, m: m})
		}
	}

	bucketKeys := make([]string, 0, len(buckets))
	for k := range buckets {
		bucketKeys = append(bucketKeys, k)
	}
	sort.Strings(bucketKeys)

	// pair key -> accumulated overlap windows
	pairs := make(map[string][]overlapWindow)
	pairOrder := []string{}
	pairLabel := make(map[string][2]*entities.Schedule)

	for _, key := range bucketKeys {
		spans := buckets[key]
		sort.Slice(spans, func(i, j int) bool {
			return spans[i].m.StartMinute < spans[j].m.StartMinute
		})
		for i := 0; i < len(spans); i++ {
			for j := i + 1; j < len(spans); j++ {
				if spans[j].m.StartMinute >= spans[i].m.EndMinute {
					break // sorted by start; nothing later can overlap i
				}
				a, b := spans[i], spans[j]
				if a.sched == b.sched {
					continue
				}
				pk := pairKey(a.sched, b.sched)
				if _, seen := pairs[pk]; !seen {
					pairOrder = append(pairOrder, pk)
					pairLabel[pk] = [2]*entities.Schedule{a.sched, b.sched}
				}
				pairs[pk] = append(pairs[pk], overlapWindow{
					day:   a.m.Day,
					start: max(a.m.StartMinute, b.m.StartMinute),
					end:   min(a.m.EndMinute, b.m.EndMinute),
				})
			}
		}
	}

	problems := make([]Problem, 0, len(pairOrder))
	for _, pk := range pairOrder {
		pair := pairLabel[pk]
		windows := pairs[pk]
		problems = append(problems, Problem{
			Code:       CodeTeachingConflict,
			Severity:   SeverityWarning,
			Collection: entities.CollectionSchedules,
			Message: fmt.Sprintf("potential teaching conflict: %s teaches %s and %s overlapping %s %s-%s",
				instructorDisplay(pair[0], pair[1]),
				pair[0].Label(), pair[1].Label(),
				formatDays(windows),
				entities.ClockString(windows[0].start),
				entities.ClockString(windows[0].end)),
		})
	}
	return problems
}

// instructorKey identifies the instructor of a schedule for bucketing:
// a resolved person id when present, else the normalized name.
func instructorKey(s *entities.Schedule) string {
	if len(s.InstructorIDs) > 0 {
		ids := append([]string(nil), s.InstructorIDs...)
		sort.Strings(ids)
		return "id:" + strings.Join(ids, "+")
	}
	if s.InstructorName != "" {
		return "name:" + strings.ToLower(strings.TrimSpace(s.InstructorName))
	}
	return ""
}

// instructorDisplay picks a display name for the conflict message.
func instructorDisplay(a, b *entities.Schedule) string {
	if a.InstructorName != "" {
		return a.InstructorName
	}
	if b.InstructorName != "" {
		return b.InstructorName
	}
	return "instructor"
}

// pairKey is an order-independent identity for a schedule pair.
func pairKey(a, b *entities.Schedule) string {
	ka, kb := a.Key(), b.Key()
	if ka > kb {
		ka, kb = kb, ka
	}
	return ka + "||" + kb
}

// formatDays joins the distinct overlap days in week order, e.g. "MWF".
func formatDays(windows []overlapWindow) string {
	seen := make(map[entities.Day]bool)
	var days []entities.Day
	for _, w := range windows {
		if !seen[w.day] {
			seen[w.day] = true
			days = append(days, w.day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Order() < days[j].Order() })
	var b strings.Builder
	for _, d := range days {
		b.WriteString(string(d))
	}
	return b.String()
}
