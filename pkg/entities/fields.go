package entities

import "fmt"

// FromFields rebuilds a typed entity from a field map produced by
// Fields(). The commit executor uses this to merge a selected subset of
// diffed fields onto an existing record without touching the rest.
func FromFields(col Collection, f map[string]any) (Entity, error) {
	switch col {
	case CollectionSchedules:
		return &Schedule{
			CourseCode:     fieldString(f, "courseCode"),
			CourseTitle:    fieldString(f, "courseTitle"),
			Section:        fieldString(f, "section"),
			CRN:            fieldString(f, "crn"),
			Term:           fieldString(f, "term"),
			TermCode:       fieldString(f, "termCode"),
			InstructorName: fieldString(f, "instructorName"),
			InstructorIDs:  fieldStrings(f, "instructorIds"),
			SpaceIDs:       fieldStrings(f, "spaceIds"),
			SpaceNames:     fieldStrings(f, "spaceNames"),
			Meetings:       fieldMeetings(f, "meetings"),
			Credits:        fieldString(f, "credits"),
			Status:         fieldString(f, "status"),
			Online:         fieldBool(f, "online"),
		}, nil
	case CollectionPeople:
		return &Person{
			FirstName:   fieldString(f, "firstName"),
			LastName:    fieldString(f, "lastName"),
			Email:       fieldString(f, "email"),
			BaylorID:    fieldString(f, "baylorId"),
			ExternalIDs: fieldStringMap(f, "externalIds"),
			Office:      fieldString(f, "office"),
			Phone:       fieldString(f, "phone"),
			Title:       fieldString(f, "title"),
		}, nil
	case CollectionRooms:
		return &Room{
			SpaceKey:    fieldString(f, "spaceKey"),
			DisplayName: fieldString(f, "displayName"),
			Building:    fieldString(f, "building"),
			RoomType:    fieldString(f, "roomType"),
		}, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", col)
	}
}

// SetID sets the store document id on a typed entity.
func SetID(e Entity, id string) {
	switch v := e.(type) {
	case *Schedule:
		v.ID = id
	case *Person:
		v.ID = id
	case *Room:
		v.ID = id
	}
}

// GetID returns the store document id of a typed entity.
func GetID(e Entity) string {
	switch v := e.(type) {
	case *Schedule:
		return v.ID
	case *Person:
		return v.ID
	case *Room:
		return v.ID
	default:
		return ""
	}
}

func fieldString(f map[string]any, key string) string {
	s, _ := f[key].(string)
	return s
}

func fieldBool(f map[string]any, key string) bool {
	b, _ := f[key].(bool)
	return b
}

func fieldStrings(f map[string]any, key string) []string {
	v, _ := f[key].([]string)
	if len(v) == 0 {
		return nil
	}
	return append([]string(nil), v...)
}

func fieldStringMap(f map[string]any, key string) map[string]string {
	v, _ := f[key].(map[string]string)
	if len(v) == 0 {
		return nil
	}
	out := make(map[string]string, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

func fieldMeetings(f map[string]any, key string) []MeetingPattern {
	v, _ := f[key].([]MeetingPattern)
	if len(v) == 0 {
		return nil
	}
	return append([]MeetingPattern(nil), v...)
}
