package engine

import (
	"context"
	"slices"
	"strings"

	"github.com/campusops/rostersync/pkg/differ"
	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/errors"
	"github.com/campusops/rostersync/pkg/logging"
	"github.com/campusops/rostersync/pkg/matching"
	"github.com/campusops/rostersync/pkg/rows"
	"github.com/campusops/rostersync/pkg/transaction"
	"github.com/campusops/rostersync/pkg/validate"
)

// Batch is one parsed export file ready for preview.
type Batch struct {
	Term string
	Type entities.ImportType
	Rows []rows.RawRow
}

// Preview projects a batch, diffs it against the store, and persists
// the resulting transaction for later review and commit. Preview never
// writes to the record collections, so rerunning it is always safe.
func (e *Engine) Preview(ctx context.Context, batch Batch) (*transaction.Transaction, error) {
	if batch.Term == "" {
		return nil, errors.NewValidationError("term", "", "term is required")
	}
	if batch.Type != entities.ImportSchedules && batch.Type != entities.ImportDirectory {
		return nil, errors.NewValidationError("importType", batch.Type, "unknown import type")
	}

	snap, err := loadSnapshot(ctx, e.store)
	if err != nil {
		return nil, err
	}

	tx := transaction.New(batch.Term, batch.Type)
	ctx = logging.WithTransaction(logging.WithTerm(ctx, batch.Term), tx.ID)
	logger := e.logger.With().Str("term", batch.Term).Str("transaction", tx.ID).Logger()

	p := &previewRun{
		engine:    e,
		snap:      snap,
		tx:        tx,
		dedupe:    differ.NewDedupe(),
		issues:    make(map[string]*matching.Issue),
		unchanged: make(map[string]bool),
	}

	switch batch.Type {
	case entities.ImportSchedules:
		p.schedules(batch.Rows)
	case entities.ImportDirectory:
		p.directory(batch.Rows)
	}
	p.finish()

	if err := e.store.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info().
		Int("rows", tx.Preview.RowsProcessed).
		Int("skipped", tx.Preview.RowsSkipped).
		Int("changes", len(tx.AllChanges())).
		Int("issues", len(tx.Issues)).
		Int("collisions", tx.Collisions.Total).
		Msg("preview complete")

	return tx, nil
}

// previewRun carries the working state of a single preview. Changes
// accumulate in the deduplicator and land in the transaction only once
// every row has been seen, so a late duplicate can still displace an
// earlier survivor.
type previewRun struct {
	engine        *Engine
	snap          *snapshot
	tx            *transaction.Transaction
	dedupe        *differ.Dedupe
	issues        map[string]*matching.Issue // keyed by instructor identity
	unchanged     map[string]bool
	pendingPeople []*differ.Change // person adds raised by matching issues
}

func (p *previewRun) schedules(rawRows []rows.RawRow) {
	for _, row := range rawRows {
		p.tx.Preview.RowsProcessed++

		sched, ref, ok := rows.ProjectSchedule(row)
		if !ok {
			p.tx.Preview.RowsSkipped++
			continue
		}
		if p.recordProblems(p.engine.validator.Schedule(sched)) {
			p.tx.Preview.RowsSkipped++
			continue
		}

		resolved, needsIssue := p.resolveInstructor(sched, ref)

		key := sched.Key()
		if p.unchanged[key] {
			continue
		}

		existing, exists := p.snap.schedulesByKey[key]
		var ch *differ.Change
		if exists {
			diff := p.engine.differ.Entity(existing, sched)
			if len(diff) == 0 {
				p.unchanged[key] = true
				p.tx.Preview.SchedulesUnchanged++
				continue
			}
			ch = differ.NewModify(existing, sched, diff)
		} else {
			ch = differ.NewAdd(sched)
		}

		kept, _ := p.dedupe.Add(key, ch)
		if needsIssue && !resolved {
			p.attachIssue(ref, kept)
		}
		p.roomsFor(sched, kept)
	}
}

// resolveInstructor fills the schedule's instructor ids when the row
// carries a strong identifier or the name matches exactly one stored
// person. Reports whether the reference resolved and, if not, whether
// it needs a matching issue.
func (p *previewRun) resolveInstructor(sched *entities.Schedule, ref rows.InstructorRef) (resolved, needsIssue bool) {
	if ref.Empty() {
		return false, false
	}

	if ref.Email != "" {
		if person, ok := p.snap.person("mail|" + ref.Email); ok {
			sched.InstructorIDs = []string{person.ID}
			return true, false
		}
	}
	if ref.CLSSID != "" {
		if person, ok := p.snap.person("clss|" + strings.ToLower(ref.CLSSID)); ok {
			sched.InstructorIDs = []string{person.ID}
			return true, false
		}
	}
	if person, ok := matching.ExactMatch(ref.First, ref.Last, p.snap.people); ok {
		sched.InstructorIDs = []string{person.ID}
		return true, false
	}
	return false, true
}

// attachIssue registers a schedule change with the single issue for
// its ambiguous instructor, creating the issue and its pending person
// add on first sight.
func (p *previewRun) attachIssue(ref rows.InstructorRef, ch *differ.Change) {
	key := strings.ToLower(ref.DisplayName() + "|" + ref.CLSSID + "|" + ref.Email)

	issue, ok := p.issues[key]
	if !ok {
		proposed := entities.Person{
			FirstName: ref.First,
			LastName:  ref.Last,
			Email:     ref.Email,
		}
		if ref.CLSSID != "" {
			proposed.ExternalIDs = map[string]string{entities.ExternalIDCLSS: ref.CLSSID}
		}

		issue = matching.NewIssue(p.tx.ImportType, proposed, p.engine.matcher.Candidates(proposed, p.snap.people))

		pending := differ.NewAdd(&proposed)
		pending.GroupKey = issue.ID
		issue.PendingPersonChangeID = pending.ID
		p.pendingPeople = append(p.pendingPeople, pending)

		p.issues[key] = issue
		p.tx.Issues = append(p.tx.Issues, issue)
	}

	if !slices.Contains(issue.ScheduleChangeIDs, ch.ID) {
		issue.ScheduleChangeIDs = append(issue.ScheduleChangeIDs, ch.ID)
	}
	ch.GroupKey = issue.ID
}

// roomsFor emits add changes for spaces the store has never seen,
// grouped with their schedule change so a selection takes them
// together.
func (p *previewRun) roomsFor(sched *entities.Schedule, schedCh *differ.Change) {
	for _, room := range rows.RoomsFor(sched) {
		key := room.Key()
		if _, known := p.snap.roomsByKey[key]; known {
			continue
		}
		if _, seen := p.dedupe.Lookup(key); seen {
			continue
		}

		ch := differ.NewAdd(room)
		if schedCh.GroupKey == "" {
			schedCh.GroupKey = schedCh.ID
		}
		ch.GroupKey = schedCh.GroupKey
		p.dedupe.Add(key, ch)
	}
}

func (p *previewRun) directory(rawRows []rows.RawRow) {
	for _, row := range rawRows {
		p.tx.Preview.RowsProcessed++

		person, ok := rows.ProjectPerson(row)
		if !ok {
			p.tx.Preview.RowsSkipped++
			continue
		}
		if p.recordProblems(p.engine.validator.Person(person)) {
			p.tx.Preview.RowsSkipped++
			continue
		}

		key := person.Key()
		if p.unchanged[key] {
			continue
		}
		if _, seen := p.dedupe.Lookup(key); seen {
			p.dedupe.Add(key, differ.NewAdd(person)) // count the collision
			continue
		}

		existing := p.lookupByAlias(person)
		if existing != nil {
			diff := p.engine.differ.Entity(existing, person)
			if len(diff) == 0 {
				p.unchanged[key] = true
				p.tx.Preview.PeopleUnchanged++
				continue
			}
			p.dedupe.Add(key, differ.NewModify(existing, person, diff))
			continue
		}

		ch := differ.NewAdd(person)
		p.dedupe.Add(key, ch)
		p.flagNameCollision(person, ch)
	}
}

func (p *previewRun) lookupByAlias(person *entities.Person) *entities.Person {
	for _, key := range person.AliasKeys() {
		if existing, ok := p.snap.peopleByKey[key]; ok {
			return existing
		}
	}
	return nil
}

// flagNameCollision raises an issue when an incoming person shares a
// name with a stored person but none of their identifiers line up:
// either the same person picked up a new email, or two people share a
// name. A reviewer decides which.
func (p *previewRun) flagNameCollision(person *entities.Person, ch *differ.Change) {
	if _, ok := matching.ExactMatch(person.FirstName, person.LastName, p.snap.people); !ok {
		return
	}

	issue := matching.NewIssue(p.tx.ImportType, *person, p.engine.matcher.Candidates(*person, p.snap.people))
	issue.PendingPersonChangeID = ch.ID
	ch.GroupKey = issue.ID
	p.tx.Issues = append(p.tx.Issues, issue)
}

// finish moves the surviving changes into the transaction and runs the
// batch-level validation passes.
func (p *previewRun) finish() {
	for _, ch := range p.pendingPeople {
		p.appendChange(ch)
	}
	for _, ch := range p.dedupe.Changes() {
		p.appendChange(ch)
	}
	p.tx.Collisions = p.dedupe.Summary()

	p.crossReference()
	if p.tx.ImportType == entities.ImportSchedules {
		p.teachingConflicts()
	}
	p.tx.Validation.Merge(validate.Result{Warnings: validate.IdentityChanges(p.tx.AllChanges())})
}

// recordProblems merges validation problems into the transaction and
// reports whether any of them is a hard error.
func (p *previewRun) recordProblems(problems []validate.Problem) bool {
	hard := false
	for _, problem := range problems {
		p.tx.Validation.Add(problem)
		if problem.Severity == validate.SeverityError {
			hard = true
		}
	}
	return hard
}

func (p *previewRun) appendChange(ch *differ.Change) {
	p.tx.Append(ch)

	modified := ch.Action == differ.ActionModify
	switch ch.Collection {
	case entities.CollectionSchedules:
		if modified {
			p.tx.Preview.SchedulesUpdated++
		} else {
			p.tx.Preview.SchedulesAdded++
		}
	case entities.CollectionPeople:
		if modified {
			p.tx.Preview.PeopleUpdated++
		} else {
			p.tx.Preview.PeopleAdded++
		}
	}
}

func (p *previewRun) crossReference() {
	problems := validate.CrossReferences(validate.CrossRefInput{
		Changes:        p.tx.AllChanges(),
		Issues:         p.tx.Issues,
		KnownPersonIDs: p.snap.personIDs,
		KnownSpaceKeys: p.snap.spaceKeys,
	})
	for _, problem := range problems {
		p.tx.Validation.Add(problem)
	}
}

// teachingConflicts scans the would-be future state: the store's
// schedules with this batch's modifies applied, plus its adds.
func (p *previewRun) teachingConflicts() {
	replaced := make(map[string]*entities.Schedule)
	var added []*entities.Schedule
	for _, ch := range p.tx.AllChanges() {
		if ch.Collection != entities.CollectionSchedules {
			continue
		}
		incoming := ch.New.(*entities.Schedule)
		if ch.Action == differ.ActionModify {
			replaced[ch.TargetID] = incoming
		} else {
			added = append(added, incoming)
		}
	}

	future := make([]*entities.Schedule, 0, len(p.snap.schedules)+len(added))
	for _, s := range p.snap.schedules {
		if repl, ok := replaced[s.ID]; ok {
			future = append(future, repl)
		} else {
			future = append(future, s)
		}
	}
	future = append(future, added...)

	for _, problem := range validate.TeachingConflicts(future) {
		p.tx.Validation.Add(problem)
	}
}
