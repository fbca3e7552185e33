package entities

import "fmt"

// Envelope wraps an Entity with its collection discriminator so
// interface-typed fields can round-trip through YAML. Exactly one of
// the typed pointers is set.
type Envelope struct {
	Collection Collection `yaml:"collection"`
	Schedule   *Schedule  `yaml:"schedule,omitempty"`
	Person     *Person    `yaml:"person,omitempty"`
	Room       *Room      `yaml:"room,omitempty"`
}

// Wrap boxes an entity into an Envelope. A nil entity yields a zero
// Envelope.
func Wrap(e Entity) Envelope {
	switch v := e.(type) {
	case *Schedule:
		return Envelope{Collection: CollectionSchedules, Schedule: v}
	case *Person:
		return Envelope{Collection: CollectionPeople, Person: v}
	case *Room:
		return Envelope{Collection: CollectionRooms, Room: v}
	default:
		return Envelope{}
	}
}

// Entity unboxes the wrapped entity, or nil for a zero Envelope.
func (e Envelope) Entity() Entity {
	switch {
	case e.Schedule != nil:
		return e.Schedule
	case e.Person != nil:
		return e.Person
	case e.Room != nil:
		return e.Room
	default:
		return nil
	}
}

// Validate checks that the collection discriminator agrees with the
// populated pointer.
func (e Envelope) Validate() error {
	ent := e.Entity()
	if ent == nil {
		if e.Collection != "" {
			return fmt.Errorf("envelope for %s has no record", e.Collection)
		}
		return nil
	}
	if ent.Collection() != e.Collection {
		return fmt.Errorf("envelope collection %q does not match record collection %q", e.Collection, ent.Collection())
	}
	return nil
}
