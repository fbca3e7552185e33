// Package validate runs the three pure validation passes over a batch:
// structural rules per entity type, cross-reference checks against the
// store snapshot, and the pairwise teaching-conflict scan. All passes
// are functions of the batch plus a snapshot; none touch the store.
package validate

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/campusops/rostersync/pkg/entities"
)

// Severity of a validation problem. Errors exclude the offending row
// from the change set; warnings are informational and never block a
// commit on their own.
type Severity string

const (
	// SeverityError marks a structural failure; the row is skipped.
	SeverityError Severity = "error"
	// SeverityWarning marks an informational finding.
	SeverityWarning Severity = "warning"
)

// Code identifies a class of validation problem.
type Code string

const (
	// CodeMissingField marks a required field that is absent.
	CodeMissingField Code = "missing_field"
	// CodeInvalidEmail marks a malformed email address.
	CodeInvalidEmail Code = "invalid_email"
	// CodeMissingIdentifier marks a person with no stable identifier.
	CodeMissingIdentifier Code = "missing_identifier"
	// CodeOrphanedReference marks a reference that resolves to nothing.
	CodeOrphanedReference Code = "orphaned_reference"
	// CodeTeachingConflict marks two overlapping sections for one
	// instructor.
	CodeTeachingConflict Code = "potential_teaching_conflict"
	// CodeIdentityChange marks a modify whose diff touches identity
	// fields.
	CodeIdentityChange Code = "identity_change"
)

// Problem is one validation finding.
type Problem struct {
	Code       Code                `yaml:"code"`
	Severity   Severity            `yaml:"severity"`
	Collection entities.Collection `yaml:"collection,omitempty"`
	ChangeID   string              `yaml:"changeId,omitempty"`
	Field      string              `yaml:"field,omitempty"`
	Message    string              `yaml:"message"`
}

// Result partitions findings by severity.
type Result struct {
	Errors   []Problem `yaml:"errors,omitempty"`
	Warnings []Problem `yaml:"warnings,omitempty"`
}

// Add appends a problem to the matching severity bucket.
func (r *Result) Add(p Problem) {
	if p.Severity == SeverityError {
		r.Errors = append(r.Errors, p)
		return
	}
	r.Warnings = append(r.Warnings, p)
}

// Merge appends all of other's findings.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Validator runs structural rules per entity type.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	return &Validator{v: validator.New()}
}

// Schedule checks the structural rules for one projected schedule: a
// course code, section, and term are required, plus at least one valid
// meeting pattern or an explicit online marker.
func (val *Validator) Schedule(s *entities.Schedule) []Problem {
	var problems []Problem
	missing := func(field string) {
		problems = append(problems, Problem{
			Code:       CodeMissingField,
			Severity:   SeverityError,
			Collection: entities.CollectionSchedules,
			Field:      field,
			Message:    fmt.Sprintf("schedule %s is missing %s", s.Label(), field),
		})
	}

	if s.CourseCode == "" {
		missing("courseCode")
	}
	if s.Section == "" {
		missing("section")
	}
	if s.Term == "" && s.TermCode == "" {
		missing("term")
	}

	valid := 0
	for _, m := range s.Meetings {
		if m.Valid() {
			valid++
		}
	}
	if valid == 0 && !s.Online {
		problems = append(problems, Problem{
			Code:       CodeMissingField,
			Severity:   SeverityError,
			Collection: entities.CollectionSchedules,
			Field:      "meetings",
			Message:    fmt.Sprintf("schedule %s has no valid meeting pattern and no online marker", s.Label()),
		})
	}
	return problems
}

// Person checks the structural rules for one projected person: at
// least one stable identifier, and a well-formed email when present.
func (val *Validator) Person(p *entities.Person) []Problem {
	var problems []Problem

	if p.Key() == "" {
		problems = append(problems, Problem{
			Code:       CodeMissingIdentifier,
			Severity:   SeverityError,
			Collection: entities.CollectionPeople,
			Message:    fmt.Sprintf("person %s has no stable identifier (email, institutional id, or external id)", p.Label()),
		})
	}
	if p.Email != "" {
		if err := val.v.Var(p.Email, "email"); err != nil {
			problems = append(problems, Problem{
				Code:       CodeInvalidEmail,
				Severity:   SeverityError,
				Collection: entities.CollectionPeople,
				Field:      "email",
				Message:    fmt.Sprintf("person %s has malformed email %q", p.Label(), p.Email),
			})
		}
	}
	return problems
}

// Room checks the structural rules for one projected room.
func (val *Validator) Room(r *entities.Room) []Problem {
	if r.DisplayName == "" {
		return []Problem{{
			Code:       CodeMissingField,
			Severity:   SeverityError,
			Collection: entities.CollectionRooms,
			Field:      "displayName",
			Message:    "room has no display name",
		}}
	}
	return nil
}
