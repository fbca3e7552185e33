package differ

import (
	"reflect"
	"sort"

	"github.com/campusops/rostersync/pkg/entities"
)

// Differ computes field-level diffs between a matched store record and
// its incoming projection.
type Differ struct {
	ignoreFields map[string]bool
}

// Option is a functional option for configuring a Differ.
type Option func(*Differ)

// WithIgnoredFields sets field keys to skip during comparison.
func WithIgnoredFields(fields ...string) Option {
	return func(d *Differ) {
		for _, f := range fields {
			d.ignoreFields[f] = true
		}
	}
}

// New creates a Differ with default settings.
func New(opts ...Option) *Differ {
	d := &Differ{ignoreFields: make(map[string]bool)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Entity compares a matched existing record against its incoming
// projection and returns the field-level diff. An empty result means
// the record is unchanged and no Change should be emitted.
//
// Every returned edit satisfies From != To under deep comparison, so
// the diff is minimal by construction.
func (d *Differ) Entity(existing, incoming entities.Entity) []FieldEdit {
	from := existing.Fields()
	to := incoming.Fields()

	keys := make([]string, 0, len(from))
	for k := range from {
		keys = append(keys, k)
	}
	for k := range to {
		if _, seen := from[k]; !seen {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var edits []FieldEdit
	for _, k := range keys {
		if d.ignoreFields[k] {
			continue
		}
		a := normalizeValue(from[k])
		b := normalizeValue(to[k])
		if !reflect.DeepEqual(a, b) {
			edits = append(edits, FieldEdit{Key: k, From: a, To: b})
		}
	}
	return edits
}

// normalizeValue collapses empty slices and maps to nil so "absent"
// and "present but empty" compare equal.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return nil
		}
	case []entities.MeetingPattern:
		if len(val) == 0 {
			return nil
		}
	case map[string]string:
		if len(val) == 0 {
			return nil
		}
	}
	return v
}
