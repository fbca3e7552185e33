package transaction

import (
	"fmt"
	"time"
)

// Stats aggregates the writes one commit performed.
type Stats struct {
	TotalChanges     int `yaml:"totalChanges"`
	SchedulesAdded   int `yaml:"schedulesAdded"`
	SchedulesUpdated int `yaml:"schedulesUpdated"`
	PeopleAdded      int `yaml:"peopleAdded"`
	PeopleUpdated    int `yaml:"peopleUpdated"`
	RoomsAdded       int `yaml:"roomsAdded"`
	RoomsUpdated     int `yaml:"roomsUpdated"`
}

// CommitResult is the terminal outcome of one commit. A transaction
// cannot be committed twice.
type CommitResult struct {
	TransactionID string `yaml:"transactionId"`
	Term          string `yaml:"term"`
	Stats         Stats  `yaml:"stats"`
}

// Summary returns a one-line human-readable commit description.
func (r *CommitResult) Summary() string {
	return fmt.Sprintf("%s: %d change(s) applied (%d schedules added, %d updated; %d people added; %d rooms added)",
		r.Term, r.Stats.TotalChanges,
		r.Stats.SchedulesAdded, r.Stats.SchedulesUpdated,
		r.Stats.PeopleAdded, r.Stats.RoomsAdded)
}

// Audit is the persisted record of one committed transaction: enough
// of the selection to reconstruct what was applied. Rollback from an
// audit record is out of scope.
type Audit struct {
	TransactionID string    `yaml:"transactionId"`
	Term          string    `yaml:"term"`
	Actor         string    `yaml:"actor,omitempty"`
	At            time.Time `yaml:"at"`
	Stats         Stats     `yaml:"stats"`
	Selection     Selection `yaml:"selection"`
}
