package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/campusops/rostersync/pkg/differ"
	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/rows"
	"github.com/campusops/rostersync/pkg/store/memory"
	"github.com/campusops/rostersync/pkg/validate"
)

func scheduleRow(overrides map[string]string) rows.RawRow {
	row := rows.RawRow{
		"CRN":             "33038",
		"Section #":       "01 (33038)",
		"Course":          "ANT 1301",
		"Course Title":    "Introduction to Anthropology",
		"Instructor":      "Smith, Jane",
		"Room":            "Draper 342",
		"Meeting Pattern": "MWF 9:05am - 9:55am",
		"Semester":        "Fall 2025",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func janeSmith() *entities.Person {
	return &entities.Person{
		ID:        "p-jane",
		FirstName: "Jane",
		LastName:  "Smith",
		Email:     "jane_smith@baylor.edu",
	}
}

func newTestEngine(seed ...entities.Entity) (*Engine, *memory.Store) {
	st := memory.New(memory.WithSeed(seed...))
	return New(st, nil, nil), st
}

func TestPreviewEndToEnd(t *testing.T) {
	e, _ := newTestEngine(janeSmith())

	tx, err := e.Preview(context.Background(), Batch{
		Term: "Fall 2025",
		Type: entities.ImportSchedules,
		Rows: []rows.RawRow{scheduleRow(nil)},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if tx.Preview.SchedulesAdded != 1 {
		t.Errorf("SchedulesAdded = %d, want 1", tx.Preview.SchedulesAdded)
	}
	if len(tx.Issues) != 0 {
		t.Errorf("resolvable instructor must not raise an issue, got %d", len(tx.Issues))
	}

	var sched *entities.Schedule
	var roomAdds int
	for _, ch := range tx.AllChanges() {
		switch ch.Collection {
		case entities.CollectionSchedules:
			sched = ch.New.(*entities.Schedule)
		case entities.CollectionRooms:
			roomAdds++
		}
	}
	if sched == nil {
		t.Fatal("no schedule change emitted")
	}
	if sched.Section != "01" {
		t.Errorf("Section = %q, want parenthesized CRN stripped to %q", sched.Section, "01")
	}
	if len(sched.InstructorIDs) != 1 || sched.InstructorIDs[0] != "p-jane" {
		t.Errorf("InstructorIDs = %v, want [p-jane]", sched.InstructorIDs)
	}
	if roomAdds != 1 {
		t.Errorf("room adds = %d, want 1", roomAdds)
	}
}

func TestPreviewIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(janeSmith())
	ctx := context.Background()
	batch := Batch{Term: "Fall 2025", Type: entities.ImportSchedules, Rows: []rows.RawRow{scheduleRow(nil)}}

	first, err := e.Preview(ctx, batch)
	if err != nil {
		t.Fatalf("first Preview() error = %v", err)
	}
	second, err := e.Preview(ctx, batch)
	if err != nil {
		t.Fatalf("second Preview() error = %v", err)
	}

	if first.Preview != second.Preview {
		t.Errorf("summaries diverge: %+v vs %+v", first.Preview, second.Preview)
	}
	if len(first.AllChanges()) != len(second.AllChanges()) {
		t.Errorf("change counts diverge: %d vs %d", len(first.AllChanges()), len(second.AllChanges()))
	}
}

func TestPreviewUnchangedAfterCommit(t *testing.T) {
	e, _ := newTestEngine(janeSmith())
	ctx := context.Background()
	batch := Batch{Term: "Fall 2025", Type: entities.ImportSchedules, Rows: []rows.RawRow{scheduleRow(nil)}}

	tx, err := e.Preview(ctx, batch)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if _, err := e.Commit(ctx, commitRequest(tx.ID)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	again, err := e.Preview(ctx, batch)
	if err != nil {
		t.Fatalf("second Preview() error = %v", err)
	}
	if again.Preview.SchedulesUnchanged != 1 || again.HasChanges() {
		t.Errorf("re-preview after commit: %+v, changes=%d", again.Preview, len(again.AllChanges()))
	}
}

func TestPreviewFoldsDuplicateRows(t *testing.T) {
	e, _ := newTestEngine(janeSmith())

	tx, err := e.Preview(context.Background(), Batch{
		Term: "Fall 2025",
		Type: entities.ImportSchedules,
		Rows: []rows.RawRow{scheduleRow(nil), scheduleRow(nil)},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if tx.Collisions.Total != 1 {
		t.Errorf("Collisions.Total = %d, want 1", tx.Collisions.Total)
	}
	if tx.Preview.SchedulesAdded != 1 {
		t.Errorf("SchedulesAdded = %d, want 1", tx.Preview.SchedulesAdded)
	}
}

func TestPreviewRaisesIssueForUnknownInstructor(t *testing.T) {
	e, _ := newTestEngine(janeSmith())

	tx, err := e.Preview(context.Background(), Batch{
		Term: "Fall 2025",
		Type: entities.ImportSchedules,
		Rows: []rows.RawRow{
			scheduleRow(map[string]string{"Instructor": "Garcia, Maria", "CRN": "40001", "Section #": "02 (40001)"}),
		},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if len(tx.Issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(tx.Issues))
	}
	issue := tx.Issues[0]
	if issue.Proposed.LastName != "Garcia" {
		t.Errorf("Proposed = %+v", issue.Proposed)
	}
	if issue.PendingPersonChangeID == "" || len(issue.ScheduleChangeIDs) != 1 {
		t.Errorf("issue wiring: %+v", issue)
	}
	if pending := tx.Change(issue.PendingPersonChangeID); pending == nil || pending.Collection != entities.CollectionPeople {
		t.Error("pending person add change missing")
	}

	sel := tx.DefaultSelection()
	for _, id := range sel.ChangeIDs {
		if id == issue.ScheduleChangeIDs[0] || id == issue.PendingPersonChangeID {
			t.Errorf("gated change %s in default selection", id)
		}
	}
}

func TestPreviewOneIssuePerInstructor(t *testing.T) {
	e, _ := newTestEngine()

	tx, err := e.Preview(context.Background(), Batch{
		Term: "Fall 2025",
		Type: entities.ImportSchedules,
		Rows: []rows.RawRow{
			scheduleRow(map[string]string{"Instructor": "Garcia, Maria", "CRN": "40001", "Section #": "02 (40001)"}),
			scheduleRow(map[string]string{"Instructor": "Garcia, Maria", "CRN": "40002", "Section #": "03 (40002)", "Meeting Pattern": "TR 11:00am - 12:15pm"}),
		},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if len(tx.Issues) != 1 {
		t.Fatalf("issues = %d, want 1 per ambiguous instructor", len(tx.Issues))
	}
	if got := len(tx.Issues[0].ScheduleChangeIDs); got != 2 {
		t.Errorf("dependent schedule changes = %d, want 2", got)
	}
}

func TestPreviewSkipsUnusableRows(t *testing.T) {
	e, _ := newTestEngine(janeSmith())

	tx, err := e.Preview(context.Background(), Batch{
		Term: "Fall 2025",
		Type: entities.ImportSchedules,
		Rows: []rows.RawRow{
			scheduleRow(map[string]string{"Room": "", "Meeting Pattern": ""}),
		},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if tx.Preview.RowsSkipped != 1 || tx.HasChanges() {
		t.Errorf("skipped = %d, changes = %d", tx.Preview.RowsSkipped, len(tx.AllChanges()))
	}
}

func TestPreviewTeachingConflictWarning(t *testing.T) {
	e, _ := newTestEngine(janeSmith(), &entities.Schedule{
		ID:             "s-existing",
		CourseCode:     "ANT 2302",
		Section:        "01",
		CRN:            "22000",
		Term:           "Fall 2025",
		InstructorName: "Jane Smith",
		InstructorIDs:  []string{"p-jane"},
		SpaceIDs:       []string{"draper 342"},
		Meetings: []entities.MeetingPattern{
			{Day: entities.Monday, StartMinute: 9*60 + 30, EndMinute: 10*60 + 20},
			{Day: entities.Wednesday, StartMinute: 9*60 + 30, EndMinute: 10*60 + 20},
			{Day: entities.Friday, StartMinute: 9*60 + 30, EndMinute: 10*60 + 20},
		},
	})

	tx, err := e.Preview(context.Background(), Batch{
		Term: "Fall 2025",
		Type: entities.ImportSchedules,
		Rows: []rows.RawRow{
			scheduleRow(map[string]string{"Meeting Pattern": "MWF 9:00am - 9:50am"}),
		},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	var conflicts []validate.Problem
	for _, w := range tx.Validation.Warnings {
		if w.Code == validate.CodeTeachingConflict {
			conflicts = append(conflicts, w)
		}
	}
	if len(conflicts) != 1 {
		t.Fatalf("conflict warnings = %d, want exactly 1", len(conflicts))
	}
	for _, want := range []string{"ANT 1301 01", "ANT 2302 01", "9:30 AM", "9:50 AM"} {
		if !strings.Contains(conflicts[0].Message, want) {
			t.Errorf("conflict message %q missing %q", conflicts[0].Message, want)
		}
	}
}

func TestPreviewDirectoryImport(t *testing.T) {
	e, _ := newTestEngine(janeSmith())

	tx, err := e.Preview(context.Background(), Batch{
		Term: "Fall 2025",
		Type: entities.ImportDirectory,
		Rows: []rows.RawRow{
			{"First Name": "Jane", "Last Name": "Smith", "E-mail Address": "jane_smith@baylor.edu", "Office": "Draper 120"},
			{"First Name": "Omar", "Last Name": "Haddad", "E-mail Address": "omar_haddad@baylor.edu"},
			{"First Name": "Nameless", "Last Name": "Person", "E-mail Address": ""},
		},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if tx.Preview.PeopleUpdated != 1 || tx.Preview.PeopleAdded != 1 {
		t.Errorf("summary = %+v", tx.Preview)
	}
	if tx.Preview.RowsSkipped != 1 {
		t.Errorf("identifier-less row must be skipped, got %d", tx.Preview.RowsSkipped)
	}
	if len(tx.Validation.Errors) == 0 {
		t.Error("missing identifier must be recorded as an error")
	}

	var modify *differ.Change
	for _, ch := range tx.AllChanges() {
		if ch.Action == differ.ActionModify {
			modify = ch
		}
	}
	if modify == nil {
		t.Fatal("existing person with new office must produce a modify")
	}
	if keys := modify.DiffKeys(); len(keys) != 1 || keys[0] != "office" {
		t.Errorf("diff keys = %v, want [office]", keys)
	}
}

