// Package matching resolves ambiguous person identities. When a
// schedule row references an instructor with no strong identifier, the
// engine raises an Issue carrying ranked candidates; the Issue must be
// resolved to an existing person (link) or an explicit creation
// (create) before its dependent changes can commit.
package matching

import (
	"github.com/google/uuid"

	"github.com/campusops/rostersync/pkg/entities"
)

// Candidate is one proposed existing person for an ambiguous
// reference.
type Candidate struct {
	Person entities.Person `yaml:"person"`
	Score  float64         `yaml:"score"`
	Reason string          `yaml:"reason"`
}

// Action is a resolution choice.
type Action string

const (
	// ActionLink binds the reference to an existing person id.
	ActionLink Action = "link"
	// ActionCreate accepts the batch's pending person add change.
	ActionCreate Action = "create"
)

// Resolution is the reviewer's decision for one Issue.
type Resolution struct {
	Action   Action `yaml:"action"`
	PersonID string `yaml:"personId,omitempty"` // required for link
}

// Issue is one unresolved ambiguous-person reference. Exactly one
// Issue exists per ambiguous instructor per batch, regardless of how
// many schedule rows reference them.
type Issue struct {
	ID                    string              `yaml:"id"`
	ImportType            entities.ImportType `yaml:"importType"`
	Proposed              entities.Person     `yaml:"proposed"`
	Candidates            []Candidate         `yaml:"candidates,omitempty"`
	PendingPersonChangeID string              `yaml:"pendingPersonChangeId,omitempty"`
	ScheduleChangeIDs     []string            `yaml:"scheduleChangeIds,omitempty"`
	Resolution            *Resolution         `yaml:"resolution,omitempty"`
}

// NewIssue creates an unresolved Issue for a proposed person.
func NewIssue(importType entities.ImportType, proposed entities.Person, candidates []Candidate) *Issue {
	return &Issue{
		ID:         uuid.NewString(),
		ImportType: importType,
		Proposed:   proposed,
		Candidates: candidates,
	}
}

// Resolved reports whether a resolution has been recorded.
func (i *Issue) Resolved() bool {
	return i.Resolution != nil
}

// Gates reports whether the given change id may not commit while the
// issue is unresolved. Dependent schedule changes always gate; the
// pending person add gates unless the resolution is create.
func (i *Issue) Gates(changeID string) bool {
	if changeID == i.PendingPersonChangeID {
		return i.Resolution == nil || i.Resolution.Action != ActionCreate
	}
	if i.Resolved() {
		return false
	}
	for _, id := range i.ScheduleChangeIDs {
		if id == changeID {
			return true
		}
	}
	return false
}
