package search

import (
	"sort"
	"strings"

	"sakanadex/internal/jptext"
	"sakanadex/pkg/species"
)

// MatchedField identifies which searchable field produced a match.
type MatchedField string

const (
	FieldCanonicalName  MatchedField = "canonicalName"
	FieldAlias          MatchedField = "alias"
	FieldRegionalName   MatchedField = "regionalName"
	FieldScientificName MatchedField = "scientificName"
)

// Detailed match scores. The ladder is a ranking aid for debugging and
// analytics; Search ranks by popularity alone and the two deliberately
// stay separate.
const (
	ScoreExactLiteral     = 100
	ScoreExactNormalized  = 90
	ScoreCanonicalPrefix  = 80
	ScoreAliasPrefix      = 70
	ScoreRegionalPrefix   = 60
	ScoreScientificPrefix = 50
)

// DetailedResult is one entry of SearchDetailed output.
type DetailedResult struct {
	Entity       species.Entity
	Score        int
	MatchedField MatchedField
	MatchedText  string
}

// SearchDetailed returns the same candidate set as Search, annotated
// with the field and term that matched. When several fields match, the
// first one in priority order (canonical > alias > regional >
// scientific) wins; evidence from other fields is not combined.
func (en *Engine) SearchDetailed(query string, opts SearchOptions) []DetailedResult {
	snap := en.snap.Load()
	nq := jptext.Normalize(query, en.norm)

	candidates := en.candidateEntities(snap, query)
	candidates = filterEntities(candidates, opts)

	results := make([]DetailedResult, 0, len(candidates))
	for i := range candidates {
		field, text, score, ok := en.matchDetail(&candidates[i], query, nq)
		if !ok {
			continue
		}
		results = append(results, DetailedResult{
			Entity:       candidates[i],
			Score:        score,
			MatchedField: field,
			MatchedText:  text,
		})
	}

	if opts.SortByPopularity == nil || *opts.SortByPopularity {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Entity.Popularity > results[j].Entity.Popularity
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

// matchDetail finds the first field, in priority order, with a
// normalized-prefix match and scores it: exact literal beats exact
// after normalization beats a per-field prefix score. Within the
// winning field the best-scoring term is reported.
func (en *Engine) matchDetail(e *species.Entity, rawQuery, normQuery string) (MatchedField, string, int, bool) {
	raw := strings.TrimSpace(rawQuery)

	type fieldTerms struct {
		field       MatchedField
		terms       []string
		prefixScore int
	}
	fields := []fieldTerms{
		{FieldCanonicalName, []string{e.CanonicalName}, ScoreCanonicalPrefix},
		{FieldAlias, e.Aliases, ScoreAliasPrefix},
		{FieldRegionalName, e.RegionalNames, ScoreRegionalPrefix},
	}
	if e.ScientificName != "" {
		fields = append(fields, fieldTerms{FieldScientificName, []string{e.ScientificName}, ScoreScientificPrefix})
	}

	for _, f := range fields {
		bestScore := 0
		bestTerm := ""
		for _, term := range f.terms {
			nt := jptext.Normalize(term, en.norm)
			if !strings.HasPrefix(nt, normQuery) {
				continue
			}
			score := f.prefixScore
			switch {
			case term == raw:
				score = ScoreExactLiteral
			case nt == normQuery:
				score = ScoreExactNormalized
			}
			if score > bestScore {
				bestScore, bestTerm = score, term
			}
		}
		if bestScore > 0 {
			return f.field, bestTerm, bestScore, true
		}
	}
	return "", "", 0, false
}
