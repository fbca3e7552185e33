package transaction

import (
	"sort"

	"github.com/campusops/rostersync/pkg/matching"
)

// Selection is the serializable value object describing exactly what a
// commit should apply: a set of change ids and, for modify changes, an
// optional restriction to a subset of diffed field keys. It carries no
// engine logic so it can round-trip through an API or a file.
type Selection struct {
	// ChangeIDs lists the selected changes. Nil means "all changes not
	// gated by an unresolved matching issue".
	ChangeIDs []string `yaml:"changeIds,omitempty"`

	// Fields optionally restricts a modify change to a subset of its
	// diffed field keys, keyed by change id. Unlisted changes apply
	// all diffed keys.
	Fields map[string][]string `yaml:"fields,omitempty"`
}

// DefaultSelection returns the selection a commit uses when none is
// given: every change except those gated by an unresolved issue.
func (t *Transaction) DefaultSelection() Selection {
	var ids []string
	for _, ch := range t.AllChanges() {
		if t.GatedBy(ch.ID) != nil {
			continue
		}
		ids = append(ids, ch.ID)
	}
	sort.Strings(ids)
	return Selection{ChangeIDs: ids}
}

// ExpandGroups widens a selection so that group-linked changes are
// selected atomically: picking any member of a group pulls in the
// rest.
func (t *Transaction) ExpandGroups(sel Selection) Selection {
	selected := make(map[string]bool, len(sel.ChangeIDs))
	groups := make(map[string]bool)
	for _, id := range sel.ChangeIDs {
		selected[id] = true
		if ch := t.Change(id); ch != nil && ch.GroupKey != "" {
			groups[ch.GroupKey] = true
		}
	}
	for _, ch := range t.AllChanges() {
		if ch.GroupKey != "" && groups[ch.GroupKey] {
			selected[ch.ID] = true
		}
	}

	ids := make([]string, 0, len(selected))
	for id := range selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return Selection{ChangeIDs: ids, Fields: sel.Fields}
}

// CommitRequest is the full input to a commit: which transaction,
// which changes, which fields of each modify, and the reviewer's
// matching resolutions keyed by issue id.
type CommitRequest struct {
	TransactionID string                         `yaml:"transactionId"`
	Selection     *Selection                     `yaml:"selection,omitempty"` // nil means default selection
	Resolutions   map[string]matching.Resolution `yaml:"resolutions,omitempty"`
	Actor         string                         `yaml:"actor,omitempty"`
}
