package differ

import (
	"testing"

	"github.com/campusops/rostersync/pkg/entities"
)

func testSchedule() *entities.Schedule {
	return &entities.Schedule{
		ID:         "s-1",
		CourseCode: "ANT 1301",
		Section:    "01",
		CRN:        "33038",
		Term:       "Fall 2025",
		SpaceIDs:   []string{"draper 201"},
		SpaceNames: []string{"Draper 201"},
		Meetings: []entities.MeetingPattern{
			{Day: entities.Monday, StartMinute: 540, EndMinute: 590},
		},
	}
}

func TestEntityNoChanges(t *testing.T) {
	d := New()
	if edits := d.Entity(testSchedule(), testSchedule()); len(edits) != 0 {
		t.Errorf("expected empty diff for identical entities, got %v", edits)
	}
}

func TestEntityDiffMinimality(t *testing.T) {
	existing := testSchedule()
	incoming := testSchedule()
	incoming.CourseTitle = "Intro to Anthropology"
	incoming.SpaceIDs = []string{"morrison 120"}
	incoming.SpaceNames = []string{"Morrison 120"}

	edits := New().Entity(existing, incoming)
	if len(edits) != 3 {
		t.Fatalf("got %d edits, want 3: %v", len(edits), edits)
	}
	for _, e := range edits {
		ex := normalizeValue(existing.Fields()[e.Key])
		in := normalizeValue(incoming.Fields()[e.Key])
		if FormatValue(ex) == FormatValue(in) {
			t.Errorf("edit %q has equal from/to", e.Key)
		}
	}
}

func TestEntityEmptyVsNilSlices(t *testing.T) {
	existing := testSchedule()
	existing.InstructorIDs = []string{}
	incoming := testSchedule()
	incoming.InstructorIDs = nil

	if edits := New().Entity(existing, incoming); len(edits) != 0 {
		t.Errorf("nil and empty slices must compare equal, got %v", edits)
	}
}

func TestWithIgnoredFields(t *testing.T) {
	existing := testSchedule()
	incoming := testSchedule()
	incoming.Status = "Cancelled"

	d := New(WithIgnoredFields("status"))
	if edits := d.Entity(existing, incoming); len(edits) != 0 {
		t.Errorf("expected ignored field to be skipped, got %v", edits)
	}
}

func TestChangeSummaryHidesLinkFields(t *testing.T) {
	existing := testSchedule()
	incoming := testSchedule()
	incoming.InstructorIDs = []string{"p-9"}
	incoming.Status = "Open"

	edits := New().Entity(existing, incoming)
	ch := NewModify(existing, incoming, edits)

	if len(ch.Diff) != 2 {
		t.Fatalf("expected instructorIds and status in diff, got %v", ch.Diff)
	}
	summary := ch.Summary()
	if len(summary) != 1 || summary[0].Key != "status" {
		t.Errorf("summary must hide internal link fields, got %v", summary)
	}
	if ch.TargetID != "s-1" {
		t.Errorf("modify change should carry the store id, got %q", ch.TargetID)
	}
}

func TestDedupeFoldsDuplicates(t *testing.T) {
	d := NewDedupe()

	first := NewAdd(testSchedule())
	second := NewAdd(testSchedule())

	kept, folded := d.Add("key-1", first)
	if folded || kept != first {
		t.Fatal("first change must survive")
	}
	kept, folded = d.Add("key-1", second)
	if !folded || kept != first {
		t.Error("second change with same key must fold into the first")
	}

	summary := d.Summary()
	if summary.Total != 1 {
		t.Errorf("collision total = %d, want 1", summary.Total)
	}
	if len(summary.Examples) != 1 || summary.Examples[0].PreferredChangeID != first.ID {
		t.Errorf("unexpected examples: %+v", summary.Examples)
	}
	if len(d.Changes()) != 1 {
		t.Errorf("exactly one change must survive, got %d", len(d.Changes()))
	}
}

func TestDedupePrefersStoreMatch(t *testing.T) {
	d := NewDedupe()

	add := NewAdd(testSchedule())
	modify := NewModify(testSchedule(), testSchedule(), nil)

	d.Add("key-1", add)
	kept, folded := d.Add("key-1", modify)

	if folded {
		t.Fatal("store-matched change must displace the unmatched add")
	}
	if kept.Action != ActionModify {
		t.Errorf("survivor action = %q, want modify", kept.Action)
	}
	if kept.ID != add.ID {
		t.Error("survivor must keep the displaced change's id for dependents")
	}
	if d.Summary().Total != 1 {
		t.Errorf("collision total = %d, want 1", d.Summary().Total)
	}
}
