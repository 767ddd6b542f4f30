/*
Package catalog loads the raw species catalog and converts it into the
typed entities the search engine indexes.

The loader memoizes a single snapshot per process: the first Load
parses and validates the source, later calls return the same slice
until ClearCache. A failed load leaves the cache untouched, so a retry
is always safe and callers never see partial data.
*/
package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	_ "embed"

	"sakanadex/pkg/species"
)

//go:embed data/catalog.json
var embeddedCatalog []byte

// SourceFilter limits a load to one provenance class.
type SourceFilter string

const (
	FilterAll      SourceFilter = "all"
	FilterOfficial SourceFilter = "official"
	FilterUser     SourceFilter = "user"
)

// ParseSourceFilter maps a config string to a SourceFilter. Empty
// means all.
func ParseSourceFilter(s string) (SourceFilter, error) {
	switch f := SourceFilter(s); f {
	case FilterAll, FilterOfficial, FilterUser:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown source filter %q", s)
}

// Loader reads, validates, and caches the catalog. Treat one loader as
// the process-wide shared cache; construct it once and inject it.
type Loader struct {
	path   string // empty means the embedded default catalog
	filter SourceFilter

	mu     sync.Mutex
	cached []species.Entity
}

// NewLoader creates a loader for the catalog file at path. An empty
// path serves the embedded default catalog.
func NewLoader(path string, filter SourceFilter) *Loader {
	if filter == "" {
		filter = FilterAll
	}
	return &Loader{path: path, filter: filter}
}

// Load returns the memoized entity snapshot, parsing the source on
// first call. The error wraps the underlying parse or read failure; on
// failure the cache is left untouched.
func (l *Loader) Load(ctx context.Context) ([]species.Entity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, origin, err := l.read()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	records, err := decodeRecords(data, DetectFormat(origin, data))
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", origin, err)
	}

	entities, err := convertRecords(records, l.filter)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", origin, err)
	}

	log.Debugf("catalog loaded: %d entities from %s (filter=%s)", len(entities), origin, l.filter)
	l.cached = entities
	return l.cached, nil
}

// ClearCache drops the memoized snapshot; the next Load re-reads the
// source.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
}

func (l *Loader) read() ([]byte, string, error) {
	if l.path == "" {
		return embeddedCatalog, "embedded catalog", nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, l.path, err
	}
	return data, l.path, nil
}

// convertRecords maps raw records to typed entities, rejecting the
// whole batch on the first malformed record.
func convertRecords(records []rawRecord, filter SourceFilter) ([]species.Entity, error) {
	entities := make([]species.Entity, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}
		if r.Name == "" {
			return nil, fmt.Errorf("record %d (%s): missing name", i, r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}

		category, err := species.ParseCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.ID, err)
		}
		source, err := species.ParseSource(r.Source)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.ID, err)
		}

		seasons := make([]species.Season, 0, len(r.Seasons))
		for _, s := range r.Seasons {
			season, err := species.ParseSeason(s)
			if err != nil {
				return nil, fmt.Errorf("record %d (%s): %w", i, r.ID, err)
			}
			seasons = append(seasons, season)
		}
		habitats := make([]species.Habitat, 0, len(r.Habitats))
		for _, h := range r.Habitats {
			habitat, err := species.ParseHabitat(h)
			if err != nil {
				return nil, fmt.Errorf("record %d (%s): %w", i, r.ID, err)
			}
			habitats = append(habitats, habitat)
		}

		createdAt, err := parseDate(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): bad createdAt: %w", i, r.ID, err)
		}
		updatedAt, err := parseDate(r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): bad updatedAt: %w", i, r.ID, err)
		}

		if filter != FilterAll && string(source) != string(filter) {
			continue
		}

		entities = append(entities, species.Entity{
			ID:             r.ID,
			CanonicalName:  r.Name,
			Aliases:        r.Aliases,
			RegionalNames:  r.RegionalNames,
			ScientificName: r.ScientificName,
			Category:       category,
			Seasons:        seasons,
			Habitats:       habitats,
			Popularity:     r.Popularity,
			Source:         source,
			CreatedAt:      createdAt,
			UpdatedAt:      updatedAt,
		})
	}
	return entities, nil
}

// parseDate accepts the two ISO-8601 shapes the catalog has carried:
// full RFC 3339 timestamps and bare dates. Empty means unset.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
