package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/campusops/rostersync/pkg/differ"
	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/errors"
	"github.com/campusops/rostersync/pkg/matching"
	"github.com/campusops/rostersync/pkg/transaction"
)

// Commit applies a reviewed selection of a previewed transaction's
// changes to the store. Person adds are written before the schedules
// that reference them; the first failed write aborts the run and the
// returned error reports which writes already landed.
func (e *Engine) Commit(ctx context.Context, req transaction.CommitRequest) (*transaction.CommitResult, error) {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	tx, err := e.store.Transaction(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if tx.Applied {
		return nil, fmt.Errorf("transaction %s: %w", tx.ID, errors.ErrTransactionApplied)
	}
	if lock, err := e.store.TermLock(ctx, tx.Term); err != nil {
		return nil, err
	} else if lock != nil {
		return nil, fmt.Errorf("term %q locked by %s: %w", tx.Term, lock.Actor, errors.ErrTermLocked)
	}

	if err := applyResolutions(tx, req.Resolutions); err != nil {
		return nil, err
	}

	var sel transaction.Selection
	if req.Selection == nil {
		sel = tx.DefaultSelection()
	} else {
		sel = tx.ExpandGroups(*req.Selection)
	}

	wanted := make(map[string]bool, len(sel.ChangeIDs))
	for _, id := range sel.ChangeIDs {
		ch := tx.Change(id)
		if ch == nil {
			return nil, errors.NewNotFoundError("change", id)
		}
		if issue := tx.GatedBy(id); issue != nil {
			// A link resolution supersedes the issue's pending person
			// add. Group expansion still pulls the pending add along
			// with its dependent schedules, so drop it here the way the
			// default selection would, rather than failing the commit.
			if issue.Resolved() && id == issue.PendingPersonChangeID {
				continue
			}
			return nil, errors.NewMatchError(issue.ID, issue.Proposed.FullName(), issue.ScheduleChangeIDs)
		}
		wanted[id] = true
	}

	// Apply in dependency order regardless of how the selection was
	// listed: people first, then rooms, then schedules.
	var selected []*differ.Change
	for _, ch := range tx.AllChanges() {
		if wanted[ch.ID] {
			selected = append(selected, ch)
		}
	}

	run := &commitRun{
		engine:   e,
		tx:       tx,
		fields:   sel.Fields,
		personID: resolvedPersonIDs(tx),
	}
	if err := run.apply(ctx, selected); err != nil {
		return nil, err
	}

	appliedAt := time.Now().UTC()
	if err := e.store.SaveTransaction(ctx, tx); err != nil {
		return nil, errors.NewCommitError(tx.ID, run.applied, err)
	}
	if err := e.store.MarkApplied(ctx, tx.ID, appliedAt); err != nil {
		return nil, errors.NewCommitError(tx.ID, run.applied, err)
	}

	audit := transaction.Audit{
		TransactionID: tx.ID,
		Term:          tx.Term,
		Actor:         req.Actor,
		At:            appliedAt,
		Stats:         run.stats,
		Selection:     sel,
	}
	// The audit trail is part of the commit contract: a committed
	// transaction with no audit record is a failure the caller must
	// see, even though every write landed and the recommit guard is
	// already in place.
	if err := e.store.AppendAudit(ctx, audit); err != nil {
		return nil, errors.NewCommitError(tx.ID, run.applied, fmt.Errorf("appending audit record: %w", err))
	}

	e.logger.Info().
		Str("transaction", tx.ID).
		Str("term", tx.Term).
		Str("actor", req.Actor).
		Int("changes", run.stats.TotalChanges).
		Msg("commit applied")

	return &transaction.CommitResult{
		TransactionID: tx.ID,
		Term:          tx.Term,
		Stats:         run.stats,
	}, nil
}

// applyResolutions records the reviewer's matching decisions on the
// transaction's issues before gating is evaluated.
func applyResolutions(tx *transaction.Transaction, resolutions map[string]matching.Resolution) error {
	for issueID, res := range resolutions {
		issue := tx.Issue(issueID)
		if issue == nil {
			return errors.NewNotFoundError("matching issue", issueID)
		}
		switch res.Action {
		case matching.ActionLink:
			if res.PersonID == "" {
				return errors.NewValidationError("personId", "", "link resolution requires a person id")
			}
		case matching.ActionCreate:
		default:
			return errors.NewValidationError("action", res.Action, "resolution must be link or create")
		}
		r := res
		issue.Resolution = &r
	}
	return nil
}

// resolvedPersonIDs maps each link-resolved issue to its chosen person
// id. Create resolutions are filled in when the pending person add is
// written.
func resolvedPersonIDs(tx *transaction.Transaction) map[string]string {
	out := make(map[string]string)
	for _, issue := range tx.Issues {
		if issue.Resolution != nil && issue.Resolution.Action == matching.ActionLink {
			out[issue.ID] = issue.Resolution.PersonID
		}
	}
	return out
}

// commitRun carries the working state of one commit: which writes have
// landed, running stats, and the issue-to-person-id map that dependent
// schedule references are rewritten through.
type commitRun struct {
	engine   *Engine
	tx       *transaction.Transaction
	fields   map[string][]string
	personID map[string]string // issue id -> resolved person id
	applied  []errors.WriteRef
	stats    transaction.Stats
}

// apply writes the selected changes. The slice arrives in commit
// order: people first, then rooms, then schedules, adds before
// modifies within each collection.
func (r *commitRun) apply(ctx context.Context, selected []*differ.Change) error {
	for _, ch := range selected {
		if err := r.applyOne(ctx, ch); err != nil {
			return errors.NewCommitError(r.tx.ID, r.applied, err)
		}
	}
	return nil
}

func (r *commitRun) applyOne(ctx context.Context, ch *differ.Change) error {
	var (
		id     string
		record entities.Entity
		err    error
	)

	switch ch.Action {
	case differ.ActionAdd:
		record = ch.New
		id = r.assignID(ch)
		entities.SetID(record, id)
	case differ.ActionModify:
		id = ch.TargetID
		record, err = r.merged(ch)
		if err != nil {
			return err
		}
	default:
		return errors.NewValidationError("action", ch.Action, "unknown change action")
	}

	if ch.Collection == entities.CollectionSchedules {
		r.rewriteInstructors(ch, record.(*entities.Schedule))
	}

	if err := r.engine.store.Put(ctx, ch.Collection, id, record); err != nil {
		return fmt.Errorf("writing %s %s: %w", ch.Collection, ch.Label(), err)
	}
	r.applied = append(r.applied, errors.WriteRef{Collection: string(ch.Collection), ID: id})
	r.count(ch)

	// Later schedule changes resolve their instructor through the
	// person this add just created.
	if ch.Collection == entities.CollectionPeople && ch.Action == differ.ActionAdd {
		if issue := r.issueForPendingPerson(ch.ID); issue != nil {
			r.personID[issue.ID] = id
		}
	}
	return nil
}

// assignID picks the store document id for an add. Rooms use their
// stable space key; schedules and people get generated ids.
func (r *commitRun) assignID(ch *differ.Change) string {
	if room, ok := ch.New.(*entities.Room); ok {
		return room.SpaceKey
	}
	return uuid.NewString()
}

// merged rebuilds the record for a modify: the existing record's
// fields with the selected subset of diffed keys overlaid from the
// incoming projection.
func (r *commitRun) merged(ch *differ.Change) (entities.Entity, error) {
	keys := ch.DiffKeys()
	if restrict, ok := r.fields[ch.ID]; ok {
		var kept []string
		for _, k := range keys {
			if slices.Contains(restrict, k) {
				kept = append(kept, k)
			}
		}
		keys = kept
	}

	base := ch.Original.Fields()
	incoming := ch.New.Fields()
	for _, k := range keys {
		base[k] = incoming[k]
	}

	record, err := entities.FromFields(ch.Collection, base)
	if err != nil {
		return nil, err
	}
	entities.SetID(record, ch.TargetID)
	return record, nil
}

// rewriteInstructors fills a schedule's instructor references from its
// matching resolution, if it has one.
func (r *commitRun) rewriteInstructors(ch *differ.Change, sched *entities.Schedule) {
	issue := r.issueForSchedule(ch.ID)
	if issue == nil {
		return
	}
	if personID, ok := r.personID[issue.ID]; ok {
		sched.InstructorIDs = []string{personID}
		sched.InstructorName = issue.Proposed.FullName()
	}
}

func (r *commitRun) issueForSchedule(changeID string) *matching.Issue {
	for _, issue := range r.tx.Issues {
		if slices.Contains(issue.ScheduleChangeIDs, changeID) {
			return issue
		}
	}
	return nil
}

func (r *commitRun) issueForPendingPerson(changeID string) *matching.Issue {
	for _, issue := range r.tx.Issues {
		if issue.PendingPersonChangeID == changeID {
			return issue
		}
	}
	return nil
}

func (r *commitRun) count(ch *differ.Change) {
	r.stats.TotalChanges++
	added := ch.Action == differ.ActionAdd
	switch ch.Collection {
	case entities.CollectionSchedules:
		if added {
			r.stats.SchedulesAdded++
		} else {
			r.stats.SchedulesUpdated++
		}
	case entities.CollectionPeople:
		if added {
			r.stats.PeopleAdded++
		} else {
			r.stats.PeopleUpdated++
		}
	case entities.CollectionRooms:
		if added {
			r.stats.RoomsAdded++
		} else {
			r.stats.RoomsUpdated++
		}
	}
}
