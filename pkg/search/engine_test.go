package search

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sakanadex/pkg/species"
)

func testCatalog() []species.Entity {
	return []species.Entity{
		{
			ID:             "ma-aji",
			CanonicalName:  "マアジ",
			Aliases:        []string{"アジ", "あじ"},
			RegionalNames:  []string{"ゼンゴ"},
			ScientificName: "Trachurus japonicus",
			Category:       species.CategoryFish,
			Seasons:        []species.Season{species.SeasonSummer},
			Habitats:       []species.Habitat{species.HabitatCoast},
			Popularity:     95,
			Source:         species.SourceOfficial,
		},
		{
			ID:            "suzuki",
			CanonicalName: "スズキ",
			Aliases:       []string{"シーバス"},
			Category:      species.CategoryFish,
			Seasons:       []species.Season{species.SeasonSummer},
			Habitats:      []species.Habitat{species.HabitatCoast, species.HabitatRiver},
			Popularity:    90,
			Source:        species.SourceOfficial,
		},
		{
			ID:            "surume-ika",
			CanonicalName: "スルメイカ",
			Category:      species.CategoryCephalopod,
			Seasons:       []species.Season{species.SeasonAutumn},
			Habitats:      []species.Habitat{species.HabitatOffshore},
			Popularity:    70,
			Source:        species.SourceUser,
		},
		{
			ID:            "ayu",
			CanonicalName: "アユ",
			RegionalNames: []string{"コアユ"},
			Category:      species.CategoryFish,
			Seasons:       []species.Season{species.SeasonSummer},
			Habitats:      []species.Habitat{species.HabitatRiver, species.HabitatLake},
			Popularity:    60,
			Source:        species.SourceOfficial,
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	en := NewEngine(DefaultEngineOptions())
	en.BuildIndex(testCatalog())
	require.True(t, en.IsReady())
	return en
}

func ids(results []species.Entity) []string {
	out := make([]string, len(results))
	for i := range results {
		out[i] = results[i].ID
	}
	return out
}

func TestSearchScenario(t *testing.T) {
	en := NewEngine(DefaultEngineOptions())
	en.BuildIndex([]species.Entity{
		{ID: "ma-aji", CanonicalName: "マアジ", Aliases: []string{"アジ", "あじ"}, Popularity: 95},
		{ID: "suzuki", CanonicalName: "スズキ", Popularity: 90},
	})

	// あ matches マアジ only, through its alias アジ
	assert.Equal(t, []string{"ma-aji"}, ids(en.Search("あ", SearchOptions{})))

	// empty query ranks the whole catalog by popularity
	assert.Equal(t, []string{"ma-aji"}, ids(en.Search("", SearchOptions{Limit: 1})))
	assert.Equal(t, []string{"ma-aji", "suzuki"}, ids(en.Search("", SearchOptions{})))

	// whitespace-only behaves as empty
	assert.Equal(t,
		ids(en.Search("", SearchOptions{})),
		ids(en.Search("   ", SearchOptions{})))
}

func TestSearchScriptFoldEquivalence(t *testing.T) {
	en := newTestEngine(t)
	assert.Equal(t, ids(en.Search("アジ", SearchOptions{})), ids(en.Search("あじ", SearchOptions{})))
	assert.Equal(t, ids(en.Search("ス", SearchOptions{})), ids(en.Search("す", SearchOptions{})))
}

func TestSearchCaseFold(t *testing.T) {
	en := newTestEngine(t)
	assert.Equal(t, []string{"ma-aji"}, ids(en.Search("TRACH", SearchOptions{})))
	assert.Equal(t, []string{"ma-aji"}, ids(en.Search("trach", SearchOptions{})))
}

func TestSearchLongerThanMaxPrefix(t *testing.T) {
	en := newTestEngine(t)

	// four runes: the bucket lookup is truncated to three, the
	// post-filter re-checks the full query
	assert.Equal(t, []string{"surume-ika"}, ids(en.Search("スルメイ", SearchOptions{})))

	// bucket matches on the first three runes but no term carries the
	// full query as prefix
	assert.Empty(t, en.Search("スルメン", SearchOptions{}))
}

func TestSearchPrefixMonotonicity(t *testing.T) {
	en := newTestEngine(t)
	query := "すずき"
	noLimit := SearchOptions{Limit: 1000}
	longer := ids(en.Search(query, noLimit))
	require.NotEmpty(t, longer)
	for l := 1; l < len([]rune(query)); l++ {
		shorter := ids(en.Search(string([]rune(query)[:l]), noLimit))
		for _, id := range longer {
			assert.Contains(t, shorter, id, "prefix length %d", l)
		}
	}
}

func TestSearchPopularityOrdering(t *testing.T) {
	en := newTestEngine(t)
	results := en.Search("", SearchOptions{})
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Popularity, results[i].Popularity)
	}

	// disabling the sort keeps filter-step (store) order
	off := false
	results = en.Search("", SearchOptions{SortByPopularity: &off})
	assert.Equal(t, []string{"ma-aji", "suzuki", "surume-ika", "ayu"}, ids(results))
}

func TestSearchFilters(t *testing.T) {
	en := newTestEngine(t)

	assert.Equal(t, []string{"surume-ika"},
		ids(en.Search("", SearchOptions{Category: species.CategoryCephalopod})))

	assert.Equal(t, []string{"suzuki", "ayu"},
		ids(en.Search("", SearchOptions{Habitat: species.HabitatRiver})))

	// conjunctive: summer AND river
	assert.Equal(t, []string{"suzuki", "ayu"},
		ids(en.Search("", SearchOptions{Season: species.SeasonSummer, Habitat: species.HabitatRiver})))

	// filters compose with a query
	assert.Empty(t, en.Search("スルメ", SearchOptions{Category: species.CategoryFish}))
}

func TestSearchLimit(t *testing.T) {
	en := NewEngine(DefaultEngineOptions())
	var many []species.Entity
	for i := 0; i < 30; i++ {
		many = append(many, species.Entity{
			ID:            strings.Repeat("x", i+1),
			CanonicalName: "アジ",
			Popularity:    i,
		})
	}
	en.BuildIndex(many)

	assert.Len(t, en.Search("あ", SearchOptions{}), DefaultLimit)
	assert.Len(t, en.Search("あ", SearchOptions{Limit: 3}), 3)
	assert.Len(t, en.Search("あ", SearchOptions{Limit: 100}), 30)
}

func TestSearchMalformedInput(t *testing.T) {
	en := newTestEngine(t)
	for _, q := range []string{
		strings.Repeat("ア", 5000),
		"!!!###",
		"12345",
		"🐟🐟🐟",
		"\x00\x01",
	} {
		assert.NotPanics(t, func() { en.Search(q, SearchOptions{}) })
	}
}

func TestBuildIndexRoundTrip(t *testing.T) {
	en := newTestEngine(t)
	queries := []string{"", "あ", "アジ", "す", "スルメイ", "trach"}

	before := make(map[string][]string)
	for _, q := range queries {
		before[q] = ids(en.Search(q, SearchOptions{}))
	}

	en.Clear()
	assert.False(t, en.IsReady())
	assert.Empty(t, en.Search("あ", SearchOptions{}))

	en.BuildIndex(testCatalog())
	for _, q := range queries {
		assert.Equal(t, before[q], ids(en.Search(q, SearchOptions{})), "query %q", q)
	}
}

func TestEmptyCatalog(t *testing.T) {
	en := NewEngine(DefaultEngineOptions())
	assert.NotPanics(t, func() { en.BuildIndex(nil) })
	assert.True(t, en.IsReady())
	assert.Empty(t, en.Search("あ", SearchOptions{}))
	assert.Empty(t, en.Search("", SearchOptions{}))

	st := en.Stats()
	assert.Equal(t, 0, st.TotalEntities)
}

func TestGetters(t *testing.T) {
	en := newTestEngine(t)

	e, ok := en.GetByID("suzuki")
	require.True(t, ok)
	assert.Equal(t, "スズキ", e.CanonicalName)
	_, ok = en.GetByID("nope")
	assert.False(t, ok)

	assert.Equal(t, []string{"ma-aji", "suzuki"}, ids(en.GetPopular(2)))
	assert.Equal(t, []string{"ma-aji", "suzuki", "ayu"},
		ids(en.GetByCategory(species.CategoryFish, 10)))
}

func TestStats(t *testing.T) {
	en := newTestEngine(t)
	st := en.Stats()
	assert.Equal(t, 4, st.TotalEntities)
	assert.Equal(t, 3, st.ByCategory[species.CategoryFish])
	assert.Equal(t, 1, st.ByCategory[species.CategoryCephalopod])
	assert.Equal(t, 3, st.BySource[species.SourceOfficial])
	assert.Equal(t, 1, st.BySource[species.SourceUser])
	assert.False(t, st.LastUpdated.IsZero())
	assert.Greater(t, st.ApproxIndexSizeBytes, 0)
}

func TestConcurrentRebuildAndSearch(t *testing.T) {
	en := newTestEngine(t)
	catalog := testCatalog()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				results := en.Search("あ", SearchOptions{})
				// a published snapshot is always complete: either the
				// full match set or nothing mid-Clear
				if len(results) > 0 {
					assert.Equal(t, "ma-aji", results[0].ID)
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			en.BuildIndex(catalog)
		}
	}()
	wg.Wait()
}
