package validate

import (
	"testing"

	"github.com/campusops/rostersync/pkg/differ"
	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/matching"
)

func validSchedule() *entities.Schedule {
	return &entities.Schedule{
		CourseCode: "ANT 1301",
		Section:    "01",
		CRN:        "33038",
		Term:       "Fall 2025",
		SpaceIDs:   []string{"draper 201"},
		Meetings: []entities.MeetingPattern{
			{Day: entities.Monday, StartMinute: 540, EndMinute: 590},
		},
	}
}

func TestScheduleStructural(t *testing.T) {
	v := New()

	if got := v.Schedule(validSchedule()); len(got) != 0 {
		t.Errorf("valid schedule flagged: %v", got)
	}

	s := validSchedule()
	s.CourseCode = ""
	s.Term = ""
	got := v.Schedule(s)
	if len(got) != 2 {
		t.Fatalf("got %d problems, want 2: %v", len(got), got)
	}
	for _, p := range got {
		if p.Severity != SeverityError {
			t.Errorf("structural problems must be errors: %+v", p)
		}
	}

	s = validSchedule()
	s.Meetings = nil
	if got = v.Schedule(s); len(got) != 1 {
		t.Errorf("no meetings and not online must fail: %v", got)
	}
	s.Online = true
	if got = v.Schedule(s); len(got) != 0 {
		t.Errorf("online marker must satisfy the meeting rule: %v", got)
	}
}

func TestPersonStructural(t *testing.T) {
	v := New()

	p := &entities.Person{FirstName: "Jane", LastName: "Smith", Email: "jane@x.edu"}
	if got := v.Person(p); len(got) != 0 {
		t.Errorf("valid person flagged: %v", got)
	}

	p = &entities.Person{FirstName: "Jane", LastName: "Smith"}
	got := v.Person(p)
	if len(got) != 1 || got[0].Code != CodeMissingIdentifier {
		t.Errorf("person without identifiers must fail: %v", got)
	}

	p = &entities.Person{FirstName: "Jane", LastName: "Smith", Email: "not-an-email"}
	got = v.Person(p)
	found := false
	for _, prob := range got {
		if prob.Code == CodeInvalidEmail {
			found = true
		}
	}
	if !found {
		t.Errorf("malformed email must be flagged: %v", got)
	}
}

func TestCrossReferences(t *testing.T) {
	sched := validSchedule()
	sched.InstructorIDs = []string{"p-404"}
	sched.SpaceIDs = []string{"nowhere 1"}
	ch := differ.NewAdd(sched)

	problems := CrossReferences(CrossRefInput{
		Changes:        []*differ.Change{ch},
		KnownPersonIDs: map[string]bool{"p-1": true},
		KnownSpaceKeys: map[string]bool{"room|draper 201": true},
	})

	if len(problems) != 2 {
		t.Fatalf("got %d problems, want 2 orphans: %v", len(problems), problems)
	}
	for _, p := range problems {
		if p.Code != CodeOrphanedReference || p.Severity != SeverityWarning {
			t.Errorf("unexpected problem: %+v", p)
		}
		if p.ChangeID != ch.ID {
			t.Errorf("problem not attributed to change: %+v", p)
		}
	}
}

func TestCrossReferencesBatchIntroducedRoom(t *testing.T) {
	sched := validSchedule()
	schedChange := differ.NewAdd(sched)
	roomChange := differ.NewAdd(&entities.Room{SpaceKey: "draper 201", DisplayName: "Draper 201"})

	problems := CrossReferences(CrossRefInput{
		Changes: []*differ.Change{schedChange, roomChange},
	})
	for _, p := range problems {
		if p.Field == "spaceIds" {
			t.Errorf("room introduced by the batch must resolve: %+v", p)
		}
	}
}

func TestCrossReferencesUnresolvedIssue(t *testing.T) {
	sched := validSchedule()
	sched.InstructorName = "Jane Smith"
	ch := differ.NewAdd(sched)

	issue := matching.NewIssue(entities.ImportSchedules, entities.Person{FirstName: "Jane", LastName: "Smith"}, nil)
	issue.ScheduleChangeIDs = []string{ch.ID}

	problems := CrossReferences(CrossRefInput{
		Changes:        []*differ.Change{ch},
		Issues:         []*matching.Issue{issue},
		KnownSpaceKeys: map[string]bool{"room|draper 201": true},
	})
	if len(problems) != 1 || problems[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning for the pending issue, got %v", problems)
	}

	issue.Resolution = &matching.Resolution{Action: matching.ActionLink, PersonID: "p-1"}
	problems = CrossReferences(CrossRefInput{
		Changes:        []*differ.Change{ch},
		Issues:         []*matching.Issue{issue},
		KnownSpaceKeys: map[string]bool{"room|draper 201": true},
	})
	if len(problems) != 0 {
		t.Errorf("resolved issue must clear the warning, got %v", problems)
	}
}

func TestIdentityChanges(t *testing.T) {
	existing := validSchedule()
	existing.ID = "s-1"
	incoming := validSchedule()
	incoming.CRN = "99999"

	edits := differ.New().Entity(existing, incoming)
	ch := differ.NewModify(existing, incoming, edits)

	problems := IdentityChanges([]*differ.Change{ch})
	if len(problems) != 1 || problems[0].Code != CodeIdentityChange {
		t.Errorf("expected one identity-change warning, got %v", problems)
	}

	incoming = validSchedule()
	incoming.Status = "Open"
	ch = differ.NewModify(existing, incoming, differ.New().Entity(existing, incoming))
	if problems = IdentityChanges([]*differ.Change{ch}); len(problems) != 0 {
		t.Errorf("non-identity edits must not warn, got %v", problems)
	}
}
