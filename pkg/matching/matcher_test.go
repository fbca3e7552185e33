package matching

import (
	"testing"

	"github.com/campusops/rostersync/pkg/entities"
)

func directory() []entities.Person {
	return []entities.Person{
		{ID: "p-1", FirstName: "Jane", LastName: "Smith", Email: "jane.smith@x.edu"},
		{ID: "p-2", FirstName: "John", LastName: "Smith", Email: "john.smith@x.edu"},
		{ID: "p-3", FirstName: "Jane", LastName: "Smyth", Email: "jane.smyth@x.edu"},
		{ID: "p-4", FirstName: "Maria", LastName: "Gonzalez", Email: "maria.gonzalez@x.edu"},
	}
}

func TestExactMatchUnique(t *testing.T) {
	p, ok := ExactMatch("Maria", "Gonzalez", directory())
	if !ok || p.ID != "p-4" {
		t.Errorf("expected unique match p-4, got %+v ok=%v", p, ok)
	}
}

func TestExactMatchCaseInsensitive(t *testing.T) {
	p, ok := ExactMatch("jane", "SMITH", directory())
	if !ok || p.ID != "p-1" {
		t.Errorf("expected p-1, got %+v ok=%v", p, ok)
	}
}

func TestExactMatchAmbiguous(t *testing.T) {
	people := append(directory(), entities.Person{ID: "p-5", FirstName: "Maria", LastName: "Gonzalez"})
	if _, ok := ExactMatch("Maria", "Gonzalez", people); ok {
		t.Error("two people with the same name must not resolve deterministically")
	}
}

func TestFuzzyCandidatesRanked(t *testing.T) {
	m := NewFuzzyMatcher()
	proposed := entities.Person{FirstName: "Jane", LastName: "Smith"}

	candidates := m.Candidates(proposed, directory())
	if len(candidates) < 2 {
		t.Fatalf("expected multiple candidates, got %d", len(candidates))
	}
	if candidates[0].Person.ID != "p-1" || candidates[0].Score != 1.0 {
		t.Errorf("best candidate should be the exact match, got %+v", candidates[0])
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[i-1].Score {
			t.Errorf("candidates out of order at %d: %v", i, candidates)
		}
	}
	for _, c := range candidates {
		if c.Reason == "" {
			t.Errorf("candidate %s has no reason", c.Person.FullName())
		}
	}
}

func TestFuzzyCandidatesThreshold(t *testing.T) {
	m := NewFuzzyMatcher()
	proposed := entities.Person{FirstName: "Zo", LastName: "Qqqq"}

	if got := m.Candidates(proposed, directory()); len(got) != 0 {
		t.Errorf("expected no candidates for an unrelated name, got %v", got)
	}
}

func TestIssueGating(t *testing.T) {
	issue := NewIssue(entities.ImportSchedules, entities.Person{FirstName: "Jane", LastName: "Smith"}, nil)
	issue.ScheduleChangeIDs = []string{"c-1", "c-2"}
	issue.PendingPersonChangeID = "c-person"

	if !issue.Gates("c-1") || !issue.Gates("c-2") {
		t.Error("unresolved issue must gate its dependent schedule changes")
	}
	if !issue.Gates("c-person") {
		t.Error("pending person add must gate without a create resolution")
	}
	if issue.Gates("c-other") {
		t.Error("unrelated changes must not be gated")
	}

	issue.Resolution = &Resolution{Action: ActionLink, PersonID: "p-1"}
	if issue.Gates("c-1") {
		t.Error("resolved issue must not gate schedule changes")
	}
	if !issue.Gates("c-person") {
		t.Error("pending person add must stay gated under a link resolution")
	}

	issue.Resolution = &Resolution{Action: ActionCreate}
	if issue.Gates("c-person") {
		t.Error("create resolution must release the pending person add")
	}
}
