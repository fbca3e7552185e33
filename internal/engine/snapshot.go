package engine

import (
	"context"
	"fmt"

	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/store"
)

// snapshot is the store state a preview diffs against, loaded once and
// indexed by identity key. People are indexed under every alias so a
// row carrying only an instructor id still finds a person stored under
// their email.
type snapshot struct {
	schedulesByKey map[string]*entities.Schedule
	peopleByKey    map[string]*entities.Person
	roomsByKey     map[string]*entities.Room

	schedules []*entities.Schedule
	people    []entities.Person

	personIDs map[string]bool
	spaceKeys map[string]bool
}

func loadSnapshot(ctx context.Context, st store.Reader) (*snapshot, error) {
	snap := &snapshot{
		schedulesByKey: make(map[string]*entities.Schedule),
		peopleByKey:    make(map[string]*entities.Person),
		roomsByKey:     make(map[string]*entities.Room),
		personIDs:      make(map[string]bool),
		spaceKeys:      make(map[string]bool),
	}

	records, err := st.List(ctx, entities.CollectionSchedules)
	if err != nil {
		return nil, fmt.Errorf("loading schedules: %w", err)
	}
	for _, e := range records {
		s := e.(*entities.Schedule)
		snap.schedules = append(snap.schedules, s)
		snap.schedulesByKey[s.Key()] = s
	}

	records, err = st.List(ctx, entities.CollectionPeople)
	if err != nil {
		return nil, fmt.Errorf("loading people: %w", err)
	}
	for _, e := range records {
		p := e.(*entities.Person)
		snap.people = append(snap.people, *p)
		snap.personIDs[p.ID] = true
		for _, key := range p.AliasKeys() {
			snap.peopleByKey[key] = p
		}
	}

	records, err = st.List(ctx, entities.CollectionRooms)
	if err != nil {
		return nil, fmt.Errorf("loading rooms: %w", err)
	}
	for _, e := range records {
		r := e.(*entities.Room)
		snap.roomsByKey[r.Key()] = r
		snap.spaceKeys[r.Key()] = true
	}

	return snap, nil
}

// person resolves a strong instructor identifier from a schedule row
// to a stored person.
func (s *snapshot) person(key string) (*entities.Person, bool) {
	if key == "" {
		return nil, false
	}
	p, ok := s.peopleByKey[key]
	return p, ok
}
