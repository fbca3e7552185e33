// Package rows handles the boundary between loosely-typed export rows
// and canonical entities. A RawRow is a string-keyed map of
// export-column-name to cell value; it is discarded once projected.
package rows

import (
	"strings"

	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/errors"
)

// RawRow is one untyped source record, keyed by export column name.
type RawRow map[string]string

// Field is a recognized logical import field.
type Field string

// Recognized logical fields.
const (
	FieldCRN            Field = "crn"
	FieldSection        Field = "section"
	FieldCourse         Field = "course"
	FieldCourseTitle    Field = "courseTitle"
	FieldInstructor     Field = "instructor"
	FieldInstructorID   Field = "instructorId"
	FieldInstructorMail Field = "instructorEmail"
	FieldRoom           Field = "room"
	FieldMeetingPattern Field = "meetingPattern"
	FieldTerm           Field = "term"
	FieldTermCode       Field = "termCode"
	FieldCredits        Field = "credits"
	FieldStatus         Field = "status"

	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldOffice    Field = "office"
	FieldTitle     Field = "title"
	FieldBaylorID  Field = "baylorId"
)

// aliases maps each logical field to accepted header spellings,
// compared after normalizeHeader.
var aliases = map[Field][]string{
	FieldCRN:            {"crn"},
	FieldSection:        {"section", "sectionnumber", "sectionno"},
	FieldCourse:         {"course", "coursecode"},
	FieldCourseTitle:    {"coursetitle", "longtitle"},
	FieldInstructor:     {"instructor", "instructors"},
	FieldInstructorID:   {"instructorid", "clssinstructorid"},
	FieldInstructorMail: {"instructoremail", "instructoremailaddress"},
	FieldRoom:           {"room", "rooms", "space"},
	FieldMeetingPattern: {"meetingpattern", "meetingpatterns", "meetings"},
	FieldTerm:           {"semester", "term"},
	FieldTermCode:       {"termcode"},
	FieldCredits:        {"credits", "credithrs", "credithours"},
	FieldStatus:         {"status", "sectionstatus"},

	FieldFirstName: {"firstname", "first"},
	FieldLastName:  {"lastname", "last"},
	FieldEmail:     {"emailaddress", "email"},
	FieldPhone:     {"phone", "phonenumber"},
	FieldOffice:    {"office", "officelocation"},
	FieldTitle:     {"title", "jobtitle"},
	FieldBaylorID:  {"baylorid", "idnumber"},
}

// normalizeHeader lowercases a header and strips everything but
// letters and digits, so "E-mail Address" and "Section #" compare as
// "emailaddress" and "section".
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lookup returns the trimmed value of a logical field, scanning the
// row's columns against the field's accepted header aliases.
func (r RawRow) Lookup(f Field) (string, bool) {
	for col, val := range r {
		norm := normalizeHeader(col)
		for _, alias := range aliases[f] {
			if norm == alias {
				return strings.TrimSpace(val), true
			}
		}
	}
	return "", false
}

// Get returns the field value or "" when absent.
func (r RawRow) Get(f Field) string {
	v, _ := r.Lookup(f)
	return v
}

// DetectImportType inspects a header set once per batch and decides
// whether the export is a class schedule or a people directory.
func DetectImportType(headers []string) (entities.ImportType, error) {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[normalizeHeader(h)] = true
	}
	has := func(f Field) bool {
		for _, alias := range aliases[f] {
			if present[alias] {
				return true
			}
		}
		return false
	}

	if has(FieldCRN) && has(FieldCourse) {
		return entities.ImportSchedules, nil
	}
	if has(FieldFirstName) && has(FieldLastName) && has(FieldEmail) {
		return entities.ImportDirectory, nil
	}
	return "", errors.NewValidationError("headers", strings.Join(headers, ","),
		"header signature matches neither a schedule nor a directory export")
}
