// Package entities defines the canonical in-memory form of imported
// records: course schedules, people, and rooms. Entities never hold
// direct references to one another, only identity-key and document-id
// strings, so a batch can be diffed and committed piecemeal.
package entities

// Collection identifies one of the three stored record collections.
type Collection string

const (
	// CollectionSchedules holds course section records.
	CollectionSchedules Collection = "schedules"
	// CollectionPeople holds directory person records.
	CollectionPeople Collection = "people"
	// CollectionRooms holds room records.
	CollectionRooms Collection = "rooms"
)

// String returns the collection name.
func (c Collection) String() string { return string(c) }

// ImportType identifies the shape of a source export.
type ImportType string

const (
	// ImportSchedules is a class-schedule export (CLSS style).
	ImportSchedules ImportType = "schedules"
	// ImportDirectory is a people-directory export.
	ImportDirectory ImportType = "directory"
)

// Entity is the canonical projected form of one imported record.
type Entity interface {
	// Collection returns the collection the entity belongs to.
	Collection() Collection

	// Key returns the deterministic identity key identifying "the same
	// logical record" across imports and the store. Empty when the
	// identity cannot be derived (an unresolved person).
	Key() string

	// Fields returns the diffable field map. Keys are stable camelCase
	// names; values are strings, bools, string slices, string maps, or
	// meeting-pattern slices.
	Fields() map[string]any

	// Label returns a short human-readable name for review screens.
	Label() string
}

// Schedule is one course section for a term.
type Schedule struct {
	ID             string           `yaml:"id,omitempty"`
	CourseCode     string           `yaml:"courseCode"`
	CourseTitle    string           `yaml:"courseTitle,omitempty"`
	Section        string           `yaml:"section"`
	CRN            string           `yaml:"crn"`
	Term           string           `yaml:"term"`
	TermCode       string           `yaml:"termCode,omitempty"`
	InstructorName string           `yaml:"instructorName,omitempty"`
	InstructorIDs  []string         `yaml:"instructorIds,omitempty"`
	SpaceIDs       []string         `yaml:"spaceIds,omitempty"`
	SpaceNames     []string         `yaml:"spaceNames,omitempty"`
	Meetings       []MeetingPattern `yaml:"meetings,omitempty"`
	Credits        string           `yaml:"credits,omitempty"`
	Status         string           `yaml:"status,omitempty"`
	Online         bool             `yaml:"online,omitempty"`
}

// Collection implements Entity.
func (s *Schedule) Collection() Collection { return CollectionSchedules }

// Label implements Entity.
func (s *Schedule) Label() string {
	if s.CourseCode != "" && s.Section != "" {
		return s.CourseCode + " " + s.Section
	}
	if s.CRN != "" {
		return "CRN " + s.CRN
	}
	return s.CourseCode
}

// Fields implements Entity.
func (s *Schedule) Fields() map[string]any {
	return map[string]any{
		"courseCode":     s.CourseCode,
		"courseTitle":    s.CourseTitle,
		"section":        s.Section,
		"crn":            s.CRN,
		"term":           s.Term,
		"termCode":       s.TermCode,
		"instructorName": s.InstructorName,
		"instructorIds":  append([]string(nil), s.InstructorIDs...),
		"spaceIds":       append([]string(nil), s.SpaceIDs...),
		"spaceNames":     append([]string(nil), s.SpaceNames...),
		"meetings":       append([]MeetingPattern(nil), s.Meetings...),
		"credits":        s.Credits,
		"status":         s.Status,
		"online":         s.Online,
	}
}

// Person is one directory record.
type Person struct {
	ID          string            `yaml:"id,omitempty"`
	FirstName   string            `yaml:"firstName"`
	LastName    string            `yaml:"lastName"`
	Email       string            `yaml:"email,omitempty"`
	BaylorID    string            `yaml:"baylorId,omitempty"`
	ExternalIDs map[string]string `yaml:"externalIds,omitempty"`
	Office      string            `yaml:"office,omitempty"`
	Phone       string            `yaml:"phone,omitempty"`
	Title       string            `yaml:"title,omitempty"`
}

// ExternalIDCLSS is the ExternalIDs key for the CLSS scheduling system
// instructor id.
const ExternalIDCLSS = "clssInstructorId"

// Collection implements Entity.
func (p *Person) Collection() Collection { return CollectionPeople }

// Label implements Entity.
func (p *Person) Label() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.LastName != "":
		return p.LastName
	default:
		return p.Email
	}
}

// FullName returns "First Last" for matching and display.
func (p *Person) FullName() string { return p.Label() }

// Fields implements Entity.
func (p *Person) Fields() map[string]any {
	var ext map[string]string
	if len(p.ExternalIDs) > 0 {
		ext = make(map[string]string, len(p.ExternalIDs))
		for k, v := range p.ExternalIDs {
			ext[k] = v
		}
	}
	return map[string]any{
		"firstName":   p.FirstName,
		"lastName":    p.LastName,
		"email":       p.Email,
		"baylorId":    p.BaylorID,
		"externalIds": ext,
		"office":      p.Office,
		"phone":       p.Phone,
		"title":       p.Title,
	}
}

// Room is one physical (or virtual) meeting space.
type Room struct {
	ID          string `yaml:"id,omitempty"`
	SpaceKey    string `yaml:"spaceKey"`
	DisplayName string `yaml:"displayName"`
	Building    string `yaml:"building,omitempty"`
	RoomType    string `yaml:"roomType,omitempty"`
}

// Collection implements Entity.
func (r *Room) Collection() Collection { return CollectionRooms }

// Label implements Entity.
func (r *Room) Label() string { return r.DisplayName }

// Fields implements Entity.
func (r *Room) Fields() map[string]any {
	return map[string]any{
		"spaceKey":    r.SpaceKey,
		"displayName": r.DisplayName,
		"building":    r.Building,
		"roomType":    r.RoomType,
	}
}
