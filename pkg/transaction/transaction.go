// Package transaction models the full reviewable result of one import
// preview: every proposed change, every matching issue, the validation
// findings, and the selection state a reviewer commits with. A
// Transaction is immutable once computed and read-only after commit.
package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusops/rostersync/pkg/differ"
	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/matching"
	"github.com/campusops/rostersync/pkg/validate"
)

// ChangeGroup partitions one collection's changes by action.
type ChangeGroup struct {
	Added    []*differ.Change `yaml:"added,omitempty"`
	Modified []*differ.Change `yaml:"modified,omitempty"`
}

// Changes holds the proposed mutations per collection.
type Changes struct {
	Schedules ChangeGroup `yaml:"schedules"`
	People    ChangeGroup `yaml:"people"`
	Rooms     ChangeGroup `yaml:"rooms"`
}

// PreviewSummary aggregates row-level counts for the review screen.
type PreviewSummary struct {
	RowsProcessed      int `yaml:"rowsProcessed"`
	RowsSkipped        int `yaml:"rowsSkipped"`
	SchedulesAdded     int `yaml:"schedulesAdded"`
	SchedulesUpdated   int `yaml:"schedulesUpdated"`
	SchedulesUnchanged int `yaml:"schedulesUnchanged"`
	PeopleAdded        int `yaml:"peopleAdded"`
	PeopleUpdated      int `yaml:"peopleUpdated"`
	PeopleUnchanged    int `yaml:"peopleUnchanged"`
}

// Transaction is one import preview held for review and commit.
type Transaction struct {
	ID         string                  `yaml:"id"`
	Term       string                  `yaml:"term"`
	ImportType entities.ImportType     `yaml:"importType"`
	Changes    Changes                 `yaml:"changes"`
	Issues     []*matching.Issue       `yaml:"matchingIssues,omitempty"`
	Validation validate.Result         `yaml:"validation"`
	Collisions differ.CollisionSummary `yaml:"collisionSummary"`
	Preview    PreviewSummary          `yaml:"previewSummary"`
	CreatedAt  time.Time               `yaml:"createdAt"`
	Applied    bool                    `yaml:"applied"`
	AppliedAt  *time.Time              `yaml:"appliedAt,omitempty"`
}

// New creates an empty transaction shell for a term.
func New(term string, importType entities.ImportType) *Transaction {
	return &Transaction{
		ID:         uuid.NewString(),
		Term:       term,
		ImportType: importType,
		CreatedAt:  time.Now().UTC(),
	}
}

// Append files a change into the right collection bucket.
func (t *Transaction) Append(ch *differ.Change) {
	group := t.group(ch.Collection)
	if ch.Action == differ.ActionAdd {
		group.Added = append(group.Added, ch)
		return
	}
	group.Modified = append(group.Modified, ch)
}

func (t *Transaction) group(col entities.Collection) *ChangeGroup {
	switch col {
	case entities.CollectionSchedules:
		return &t.Changes.Schedules
	case entities.CollectionPeople:
		return &t.Changes.People
	default:
		return &t.Changes.Rooms
	}
}

// AllChanges returns every change across collections, adds first
// within each collection, people before rooms before schedules so
// reference targets precede the records that point at them.
func (t *Transaction) AllChanges() []*differ.Change {
	var out []*differ.Change
	for _, g := range []ChangeGroup{t.Changes.People, t.Changes.Rooms, t.Changes.Schedules} {
		out = append(out, g.Added...)
		out = append(out, g.Modified...)
	}
	return out
}

// Change finds a change by id.
func (t *Transaction) Change(id string) *differ.Change {
	for _, ch := range t.AllChanges() {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}

// Issue finds a matching issue by id.
func (t *Transaction) Issue(id string) *matching.Issue {
	for _, issue := range t.Issues {
		if issue.ID == id {
			return issue
		}
	}
	return nil
}

// GatedBy returns the issue gating a change id, or nil.
func (t *Transaction) GatedBy(changeID string) *matching.Issue {
	for _, issue := range t.Issues {
		if issue.Gates(changeID) {
			return issue
		}
	}
	return nil
}

// HasChanges reports whether any mutation was proposed.
func (t *Transaction) HasChanges() bool {
	return len(t.AllChanges()) > 0
}
