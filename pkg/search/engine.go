/*
Package search implements the in-memory species name search engine.

The engine resolves free-form, script-mixed input (hiragana, katakana,
kanji, romaji aliases) to catalog entities via a bounded-length prefix
index over every searchable term, ranks results by popularity, and
exposes a detailed mode that reports which field produced each match.

Lookups are sub-millisecond for catalogs in the low thousands: a query
costs one bucket retrieval plus a post-filter over that bucket's
candidates. The index is rebuilt from a catalog snapshot and published
atomically, so concurrent readers always observe a complete index.
*/
package search

import (
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"sakanadex/internal/jptext"
	"sakanadex/pkg/species"
)

const (
	// DefaultMaxPrefixLength bounds indexed prefix length. Three runes
	// keeps index growth linear in term count while still narrowing a
	// bucket to a handful of candidates.
	DefaultMaxPrefixLength = 3

	// DefaultLimit is the result cap when a query doesn't set one.
	DefaultLimit = 10
)

// EngineOptions configure an Engine. Zero fields fall back to defaults.
type EngineOptions struct {
	MaxPrefixLength int
	DefaultLimit    int
	Normalizer      jptext.Options
}

// DefaultEngineOptions returns the options the application ships with.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		MaxPrefixLength: DefaultMaxPrefixLength,
		DefaultLimit:    DefaultLimit,
		Normalizer:      jptext.DefaultOptions(),
	}
}

// snapshot pairs a store with the index built from it. Snapshots are
// immutable; BuildIndex and Clear publish new ones.
type snapshot struct {
	store   *species.Store
	index   *prefixIndex
	ready   bool
	builtAt time.Time
}

// Engine answers prefix queries over the current catalog snapshot.
// All read operations are safe for concurrent use with BuildIndex.
type Engine struct {
	maxPrefix    int
	defaultLimit int
	norm         jptext.Options
	snap         atomic.Pointer[snapshot]
}

// NewEngine creates an engine with no catalog loaded. IsReady reports
// false until the first BuildIndex.
func NewEngine(opts EngineOptions) *Engine {
	if opts.MaxPrefixLength <= 0 {
		opts.MaxPrefixLength = DefaultMaxPrefixLength
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	en := &Engine{
		maxPrefix:    opts.MaxPrefixLength,
		defaultLimit: opts.DefaultLimit,
		norm:         opts.Normalizer,
	}
	en.snap.Store(emptySnapshot())
	return en
}

func emptySnapshot() *snapshot {
	return &snapshot{store: species.NewStore(nil)}
}

// BuildIndex replaces the store and prefix index from a catalog
// snapshot. The new index is built off to the side and published with a
// single pointer swap: in-flight readers keep the previous snapshot and
// never observe a partial rebuild. An empty slice yields an empty,
// ready index.
func (en *Engine) BuildIndex(entities []species.Entity) {
	start := time.Now()
	store := species.NewStore(entities)
	index := buildPrefixIndex(store.All(), en.maxPrefix, en.norm)
	en.snap.Store(&snapshot{
		store:   store,
		index:   index,
		ready:   true,
		builtAt: time.Now(),
	})
	log.Debugf("index built: %d entities, %d buckets in %v",
		store.Len(), index.buckets, time.Since(start))
}

// Clear empties the engine and resets readiness.
func (en *Engine) Clear() {
	en.snap.Store(emptySnapshot())
}

// IsReady reports whether an index has been built since the last Clear.
func (en *Engine) IsReady() bool {
	return en.snap.Load().ready
}

// SearchOptions narrow and shape a single query. Filters are
// conjunctive; empty fields mean "no filter".
type SearchOptions struct {
	Limit    int // 0 means the engine default
	Category species.Category
	Season   species.Season
	Habitat  species.Habitat

	// SortByPopularity defaults to true when nil. When disabled, results
	// keep the order produced by the filter step.
	SortByPopularity *bool
}

// Search returns entities whose any searchable term starts with the
// normalized query, filtered, popularity-ranked, and truncated to the
// limit. Empty and whitespace-only queries rank the whole catalog,
// which is the "show popular entries on an empty field" behavior. The
// function is total: malformed input yields an empty or short result
// set, never an error.
func (en *Engine) Search(query string, opts SearchOptions) []species.Entity {
	snap := en.snap.Load()
	results := en.candidateEntities(snap, query)
	results = filterEntities(results, opts)

	if opts.SortByPopularity == nil || *opts.SortByPopularity {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Popularity > results[j].Popularity
		})
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = en.defaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// GetPopular returns the highest-popularity entities in the catalog.
func (en *Engine) GetPopular(limit int) []species.Entity {
	return en.Search("", SearchOptions{Limit: limit})
}

// GetByCategory returns the highest-popularity entities in a category.
func (en *Engine) GetByCategory(c species.Category, limit int) []species.Entity {
	return en.Search("", SearchOptions{Limit: limit, Category: c})
}

// GetByID resolves a single entity from the current snapshot.
func (en *Engine) GetByID(id string) (species.Entity, bool) {
	return en.snap.Load().store.ByID(id)
}

// Stats reports aggregate counts over the current snapshot.
type Stats struct {
	TotalEntities        int
	ByCategory           map[species.Category]int
	BySource             map[species.Source]int
	LastUpdated          time.Time
	ApproxIndexSizeBytes int
}

// Stats aggregates counts with a single pass over the store.
func (en *Engine) Stats() Stats {
	snap := en.snap.Load()
	st := snap.store.Stats()
	out := Stats{
		TotalEntities: st.TotalEntities,
		ByCategory:    st.ByCategory,
		BySource:      st.BySource,
		LastUpdated:   snap.builtAt,
	}
	if snap.index != nil {
		out.ApproxIndexSizeBytes = snap.index.approxSizeBytes()
	}
	return out
}

// candidateEntities resolves a raw query to the entities whose any
// normalized searchable term has the full normalized query as prefix.
// The bucket lookup only certifies the first maxPrefix runes, so every
// candidate is re-checked against the untruncated query.
func (en *Engine) candidateEntities(snap *snapshot, query string) []species.Entity {
	nq := jptext.Normalize(query, en.norm)
	if nq == "" {
		all := snap.store.All()
		out := make([]species.Entity, len(all))
		copy(out, all)
		return out
	}
	if snap.index == nil {
		return nil
	}

	var out []species.Entity
	for _, id := range snap.index.candidates(nq) {
		e, ok := snap.store.ByID(id)
		if !ok {
			log.Errorf("index references unknown entity id %q", id)
			continue
		}
		if en.anyTermHasPrefix(&e, nq) {
			out = append(out, e)
		}
	}
	return out
}

func (en *Engine) anyTermHasPrefix(e *species.Entity, normQuery string) bool {
	for _, term := range e.SearchTerms() {
		if strings.HasPrefix(jptext.Normalize(term, en.norm), normQuery) {
			return true
		}
	}
	return false
}

func filterEntities(entities []species.Entity, opts SearchOptions) []species.Entity {
	if opts.Category == "" && opts.Season == "" && opts.Habitat == "" {
		return entities
	}
	out := entities[:0]
	for i := range entities {
		e := &entities[i]
		if opts.Category != "" && e.Category != opts.Category {
			continue
		}
		if opts.Season != "" && !e.HasSeason(opts.Season) {
			continue
		}
		if opts.Habitat != "" && !e.HasHabitat(opts.Habitat) {
			continue
		}
		out = append(out, *e)
	}
	return out
}
