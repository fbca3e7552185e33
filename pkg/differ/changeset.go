// Package differ detects changes between incoming projected entities
// and the records already in the store, and deduplicates colliding
// rows inside one batch before any diffing happens.
package differ

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/campusops/rostersync/pkg/entities"
)

// Action is the kind of mutation a Change proposes.
type Action string

const (
	// ActionAdd creates a new record.
	ActionAdd Action = "add"
	// ActionModify updates an existing record field by field.
	ActionModify Action = "modify"
)

// FieldEdit is one field-level difference inside a modify Change.
type FieldEdit struct {
	Key  string `yaml:"key"`
	From any    `yaml:"from"`
	To   any    `yaml:"to"`
}

// internalLinkKeys are reference fields kept in Diff for commit
// bookkeeping but excluded from user-facing summaries.
var internalLinkKeys = map[string]bool{
	"instructorIds": true,
	"spaceIds":      true,
}

// Change is one proposed add or modify mutation with its field-level
// diff. For adds, Original is nil and Diff is empty.
type Change struct {
	ID         string              `yaml:"id"`
	Collection entities.Collection `yaml:"collection"`
	Action     Action              `yaml:"action"`
	GroupKey   string              `yaml:"groupKey,omitempty"`
	TargetID   string              `yaml:"targetId,omitempty"` // store document id for modify
	Original   entities.Entity     `yaml:"-"`
	New        entities.Entity     `yaml:"-"`
	Diff       []FieldEdit         `yaml:"diff,omitempty"`
}

// NewAdd creates an add Change for an entity with no store match.
func NewAdd(e entities.Entity) *Change {
	return &Change{
		ID:         uuid.NewString(),
		Collection: e.Collection(),
		Action:     ActionAdd,
		New:        e,
	}
}

// NewModify creates a modify Change against a matched store record.
func NewModify(existing, incoming entities.Entity, diff []FieldEdit) *Change {
	return &Change{
		ID:         uuid.NewString(),
		Collection: incoming.Collection(),
		Action:     ActionModify,
		TargetID:   entities.GetID(existing),
		Original:   existing,
		New:        incoming,
		Diff:       diff,
	}
}

// Label returns a short human-readable description of the change
// target.
func (c *Change) Label() string {
	if c.New != nil {
		return c.New.Label()
	}
	if c.Original != nil {
		return c.Original.Label()
	}
	return c.ID
}

// DiffKeys returns the keys present in Diff.
func (c *Change) DiffKeys() []string {
	keys := make([]string, len(c.Diff))
	for i, e := range c.Diff {
		keys[i] = e.Key
	}
	return keys
}

// Summary returns the user-facing portion of Diff: every edit except
// internal linking fields.
func (c *Change) Summary() []FieldEdit {
	var out []FieldEdit
	for _, e := range c.Diff {
		if !internalLinkKeys[e.Key] {
			out = append(out, e)
		}
	}
	return out
}

// FormatValue renders a diff value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return fmt.Sprintf("%v", val)
	case []string:
		return strings.Join(val, ", ")
	case []entities.MeetingPattern:
		parts := make([]string, len(val))
		for i, m := range val {
			parts[i] = m.String()
		}
		return strings.Join(parts, "; ")
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + val[k]
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Collision records one identity key that more than one incoming row
// mapped to.
type Collision struct {
	Key               string `yaml:"key"`
	PreferredChangeID string `yaml:"preferredChangeId"`
	Dropped           int    `yaml:"dropped"`
}

// CollisionSummary aggregates intra-batch duplicate rows. Total counts
// folded rows, not colliding keys: two rows sharing one key yield
// Total == 1.
type CollisionSummary struct {
	Total        int                         `yaml:"total"`
	ByCollection map[entities.Collection]int `yaml:"byCollection,omitempty"`
	Examples     []Collision                 `yaml:"examples,omitempty"`
}
