package entities

import (
	"sort"
	"strings"
)

// Identity keys are deterministic strings deriving "the same logical
// record" from stable fields. Two entities with equal keys are the same
// record regardless of which import produced them.

// Key implements Entity. A schedule is identified by its CRN, section,
// meeting pattern, rooms, and term: the same section meeting at a
// different time or place is a different logical record.
func (s *Schedule) Key() string {
	term := s.TermCode
	if term == "" {
		term = normalizeKeyPart(s.Term)
	}
	rooms := append([]string(nil), s.SpaceIDs...)
	sort.Strings(rooms)
	return strings.Join([]string{
		"sched",
		normalizeKeyPart(s.CRN),
		normalizeKeyPart(s.Section),
		FormatMeetings(s.Meetings),
		strings.Join(rooms, "+"),
		term,
	}, "|")
}

// Key implements Entity. People are identified by their strongest
// stable identifier: email, then institutional id, then the external
// scheduling-system instructor id. Returns "" when none is present,
// which routes the person through the matcher.
func (p *Person) Key() string {
	if p.Email != "" {
		return "mail|" + strings.ToLower(strings.TrimSpace(p.Email))
	}
	if p.BaylorID != "" {
		return "baylor|" + normalizeKeyPart(p.BaylorID)
	}
	if id := p.ExternalIDs[ExternalIDCLSS]; id != "" {
		return "clss|" + normalizeKeyPart(id)
	}
	return ""
}

// AliasKeys returns every identity key the person answers to, not
// just the strongest one. Snapshot indexes use these so a schedule row
// carrying only an instructor id still finds a person stored under
// their email.
func (p *Person) AliasKeys() []string {
	var keys []string
	if p.Email != "" {
		keys = append(keys, "mail|"+strings.ToLower(strings.TrimSpace(p.Email)))
	}
	if p.BaylorID != "" {
		keys = append(keys, "baylor|"+normalizeKeyPart(p.BaylorID))
	}
	if id := p.ExternalIDs[ExternalIDCLSS]; id != "" {
		keys = append(keys, "clss|"+normalizeKeyPart(id))
	}
	return keys
}

// Key implements Entity. Rooms are identified by their normalized
// display name.
func (r *Room) Key() string {
	if r.SpaceKey != "" {
		return "room|" + r.SpaceKey
	}
	return "room|" + NormalizeSpaceKey(r.DisplayName)
}

// NormalizeSpaceKey lowercases a room display name and collapses
// whitespace so "Draper  201" and "draper 201" are one space.
func NormalizeSpaceKey(displayName string) string {
	return strings.Join(strings.Fields(strings.ToLower(displayName)), " ")
}

// normalizeKeyPart lowercases and trims one key component.
func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
