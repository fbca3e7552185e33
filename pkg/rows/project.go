package rows

import (
	"strings"

	"github.com/campusops/rostersync/pkg/entities"
)

// InstructorRef carries the instructor reference of one schedule row
// for identity resolution. The schedule entity itself only ever holds
// resolved person ids.
type InstructorRef struct {
	Raw    string // original export token, usually "Last, First"
	First  string
	Last   string
	CLSSID string // external scheduling-system instructor id, if exported
	Email  string // instructor email, if exported
}

// Empty reports whether the row carried no instructor at all.
func (ir InstructorRef) Empty() bool {
	return ir.Raw == "" && ir.CLSSID == "" && ir.Email == ""
}

// DisplayName returns "First Last" for labels and matching.
func (ir InstructorRef) DisplayName() string {
	if ir.First != "" {
		return ir.First + " " + ir.Last
	}
	return ir.Last
}

// ProjectSchedule maps one schedule-export row to a canonical Schedule
// plus its instructor reference. Returns ok=false when the row is
// structurally unusable: no room and no valid meeting pattern and no
// explicit online marker. Such rows are dropped and counted as
// skipped, not treated as errors.
func ProjectSchedule(r RawRow) (*entities.Schedule, InstructorRef, bool) {
	s := &entities.Schedule{
		CourseCode:  r.Get(FieldCourse),
		CourseTitle: r.Get(FieldCourseTitle),
		Section:     StripSectionCRN(r.Get(FieldSection)),
		CRN:         r.Get(FieldCRN),
		Term:        r.Get(FieldTerm),
		TermCode:    r.Get(FieldTermCode),
		Credits:     r.Get(FieldCredits),
		Status:      r.Get(FieldStatus),
	}

	meetingCell := r.Get(FieldMeetingPattern)
	roomCell := r.Get(FieldRoom)

	s.Meetings = ParseMeetingPatterns(meetingCell)

	online := false
	for _, part := range strings.Split(roomCell, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if isOnlineMarker(part) {
			online = true
			continue
		}
		s.SpaceNames = append(s.SpaceNames, part)
		s.SpaceIDs = append(s.SpaceIDs, entities.NormalizeSpaceKey(part))
	}
	if isOnlineMarker(meetingCell) {
		online = true
	}
	s.Online = online

	if len(s.SpaceIDs) == 0 && len(s.Meetings) == 0 && !online {
		return nil, InstructorRef{}, false
	}

	ref := InstructorRef{
		Raw:    r.Get(FieldInstructor),
		CLSSID: r.Get(FieldInstructorID),
		Email:  strings.ToLower(r.Get(FieldInstructorMail)),
	}
	ref.First, ref.Last = SplitLastFirst(ref.Raw)
	s.InstructorName = ref.DisplayName()

	return s, ref, true
}

// ProjectPerson maps one directory-export row to a canonical Person.
// Returns ok=false for rows with no name at all.
func ProjectPerson(r RawRow) (*entities.Person, bool) {
	p := &entities.Person{
		FirstName: RetitleName(r.Get(FieldFirstName)),
		LastName:  RetitleName(r.Get(FieldLastName)),
		Email:     strings.ToLower(r.Get(FieldEmail)),
		BaylorID:  r.Get(FieldBaylorID),
		Office:    r.Get(FieldOffice),
		Phone:     r.Get(FieldPhone),
		Title:     r.Get(FieldTitle),
	}
	if p.FirstName == "" && p.LastName == "" {
		return nil, false
	}
	return p, true
}

// RoomsFor derives Room entities from a projected schedule's space
// list. Rooms carry their own identity so cross-listed sections in the
// same space dedupe to one room record.
func RoomsFor(s *entities.Schedule) []*entities.Room {
	rooms := make([]*entities.Room, 0, len(s.SpaceNames))
	for _, name := range s.SpaceNames {
		room := &entities.Room{
			SpaceKey:    entities.NormalizeSpaceKey(name),
			DisplayName: name,
			RoomType:    "classroom",
		}
		// "Draper 201" -> building "Draper"; single-word names stay whole.
		if words := strings.Fields(name); len(words) > 1 {
			room.Building = strings.Join(words[:len(words)-1], " ")
		}
		rooms = append(rooms, room)
	}
	return rooms
}
