package differ

import (
	"sort"

	"github.com/campusops/rostersync/pkg/entities"
)

// Dedupe folds incoming rows that map to the same identity key into a
// single surviving Change. It must run before diffing so the diff
// engine never sees duplicate adds for one logical record.
type Dedupe struct {
	keep   map[string]*Change
	folded map[string]int
	order  []string
}

// NewDedupe creates an empty intra-batch deduplicator.
func NewDedupe() *Dedupe {
	return &Dedupe{
		keep:   make(map[string]*Change),
		folded: make(map[string]int),
	}
}

// Add registers ch under its entity's identity key. The first Change
// per key survives, except that a store-matched modify displaces an
// earlier unmatched add: the batch is a refresh of known data, not a
// fork. Returns the surviving Change and whether ch was folded away.
func (d *Dedupe) Add(key string, ch *Change) (*Change, bool) {
	kept, exists := d.keep[key]
	if !exists {
		d.keep[key] = ch
		d.order = append(d.order, key)
		return ch, false
	}

	d.folded[key]++
	if kept.Action == ActionAdd && ch.Action == ActionModify {
		// Prefer the store-existing match; carry the earlier change's
		// identity so dependents keep pointing at the survivor.
		ch.ID = kept.ID
		ch.GroupKey = kept.GroupKey
		d.keep[key] = ch
		return ch, false
	}
	return kept, true
}

// Lookup returns the surviving Change for a key, if any.
func (d *Dedupe) Lookup(key string) (*Change, bool) {
	ch, ok := d.keep[key]
	return ch, ok
}

// Changes returns surviving Changes in first-seen order.
func (d *Dedupe) Changes() []*Change {
	out := make([]*Change, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.keep[key])
	}
	return out
}

// Summary reports how many rows were folded and for which keys.
func (d *Dedupe) Summary() CollisionSummary {
	summary := CollisionSummary{
		ByCollection: make(map[entities.Collection]int),
	}

	keys := make([]string, 0, len(d.folded))
	for key := range d.folded {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		count := d.folded[key]
		kept := d.keep[key]
		summary.Total += count
		summary.ByCollection[kept.Collection] += count
		summary.Examples = append(summary.Examples, Collision{
			Key:               key,
			PreferredChangeID: kept.ID,
			Dropped:           count,
		})
	}
	if len(summary.ByCollection) == 0 {
		summary.ByCollection = nil
	}
	return summary
}
