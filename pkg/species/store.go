package species

import (
	"github.com/charmbracelet/log"
)

// Store is an immutable snapshot of the catalog. It is built once per
// index rebuild and replaced wholesale, never mutated in place.
type Store struct {
	entities []Entity
	byID     map[string]*Entity
}

// NewStore copies the given entities into a snapshot. Duplicate ids
// violate the catalog invariant; the first occurrence wins and the rest
// are logged and dropped.
func NewStore(entities []Entity) *Store {
	s := &Store{
		entities: make([]Entity, 0, len(entities)),
		byID:     make(map[string]*Entity, len(entities)),
	}
	for _, e := range entities {
		if _, dup := s.byID[e.ID]; dup {
			log.Warnf("duplicate entity id %q dropped from store", e.ID)
			continue
		}
		s.entities = append(s.entities, e)
		s.byID[e.ID] = &s.entities[len(s.entities)-1]
	}
	return s
}

// ByID returns the entity for id, if present.
func (s *Store) ByID(id string) (Entity, bool) {
	e, ok := s.byID[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// All returns the snapshot's entities in load order. Callers must not
// mutate the returned slice.
func (s *Store) All() []Entity {
	return s.entities
}

// Len returns the number of entities in the snapshot.
func (s *Store) Len() int {
	return len(s.entities)
}

// Stats holds aggregate catalog counts.
type Stats struct {
	TotalEntities int
	ByCategory    map[Category]int
	BySource      map[Source]int
}

// Stats aggregates counts in a single pass over the snapshot.
func (s *Store) Stats() Stats {
	st := Stats{
		TotalEntities: len(s.entities),
		ByCategory:    make(map[Category]int),
		BySource:      make(map[Source]int),
	}
	for i := range s.entities {
		st.ByCategory[s.entities[i].Category]++
		st.BySource[s.entities[i].Source]++
	}
	return st
}
