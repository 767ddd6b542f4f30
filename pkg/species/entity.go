// Package species defines the searchable catalog model: entities with a
// canonical name, alternate names, and the filter attributes the search
// engine understands.
package species

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category classifies an entity within the catalog. The set is closed;
// unknown values are rejected at load time.
type Category string

const (
	CategoryFish       Category = "fish"
	CategoryCephalopod Category = "cephalopod"
	CategoryCrustacean Category = "crustacean"
	CategoryShellfish  Category = "shellfish"
	CategoryOther      Category = "other"
)

// Season marks when an entity is in peak season.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// Habitat marks where an entity is typically found.
type Habitat string

const (
	HabitatCoast    Habitat = "coast"
	HabitatOffshore Habitat = "offshore"
	HabitatRiver    Habitat = "river"
	HabitatLake     Habitat = "lake"
)

// Source flags provenance: curated catalog entries vs user submissions.
type Source string

const (
	SourceOfficial Source = "official"
	SourceUser     Source = "user"
)

// Entity is one catalog entry. Entities are immutable once loaded;
// changes go through a fresh catalog load and index rebuild.
type Entity struct {
	ID             string
	CanonicalName  string
	Aliases        []string
	RegionalNames  []string
	ScientificName string
	Category       Category
	Seasons        []Season
	Habitats       []Habitat
	Popularity     int
	Source         Source
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SearchTerms returns every searchable name in field priority order:
// canonical name, aliases, regional names, scientific name.
func (e *Entity) SearchTerms() []string {
	terms := make([]string, 0, 2+len(e.Aliases)+len(e.RegionalNames))
	terms = append(terms, e.CanonicalName)
	terms = append(terms, e.Aliases...)
	terms = append(terms, e.RegionalNames...)
	if e.ScientificName != "" {
		terms = append(terms, e.ScientificName)
	}
	return terms
}

// HasSeason reports membership in the entity's season set.
func (e *Entity) HasSeason(s Season) bool {
	for _, v := range e.Seasons {
		if v == s {
			return true
		}
	}
	return false
}

// HasHabitat reports membership in the entity's habitat set.
func (e *Entity) HasHabitat(h Habitat) bool {
	for _, v := range e.Habitats {
		if v == h {
			return true
		}
	}
	return false
}

// NewUserEntity builds a user-submitted entity with a fresh id and
// timestamps. The name is expected to have passed validation already.
func NewUserEntity(name string, category Category, popularity int) Entity {
	now := time.Now()
	return Entity{
		ID:            uuid.NewString(),
		CanonicalName: name,
		Category:      category,
		Popularity:    popularity,
		Source:        SourceUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ParseCategory maps a raw catalog string to a Category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryFish, CategoryCephalopod, CategoryCrustacean, CategoryShellfish, CategoryOther:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// ParseSeason maps a raw catalog string to a Season.
func ParseSeason(s string) (Season, error) {
	switch v := Season(s); v {
	case SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter:
		return v, nil
	}
	return "", fmt.Errorf("unknown season %q", s)
}

// ParseHabitat maps a raw catalog string to a Habitat.
func ParseHabitat(s string) (Habitat, error) {
	switch v := Habitat(s); v {
	case HabitatCoast, HabitatOffshore, HabitatRiver, HabitatLake:
		return v, nil
	}
	return "", fmt.Errorf("unknown habitat %q", s)
}

// ParseSource maps a raw catalog string to a Source. Empty defaults to
// official, since curated entries predate the provenance flag.
func ParseSource(s string) (Source, error) {
	switch v := Source(s); v {
	case SourceOfficial, SourceUser:
		return v, nil
	case "":
		return SourceOfficial, nil
	}
	return "", fmt.Errorf("unknown source %q", s)
}
