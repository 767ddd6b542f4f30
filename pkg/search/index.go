package search

import (
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"

	"sakanadex/internal/jptext"
	"sakanadex/pkg/species"
)

// Rough per-bucket overhead used for the size estimate reported by
// Stats. Deliberately an estimate, not a measurement.
const bucketOverheadBytes = 48

// prefixIndex maps normalized prefixes of bounded rune length to the
// deduplicated set of entity ids whose any searchable term starts with
// that prefix. Buckets only certify the first maxPrefix runes; callers
// post-filter candidates against the full query.
type prefixIndex struct {
	trie      *patricia.Trie
	maxPrefix int
	buckets   int
	idBytes   int
}

func buildPrefixIndex(entities []species.Entity, maxPrefix int, norm jptext.Options) *prefixIndex {
	sets := make(map[string]map[string]struct{})
	for i := range entities {
		e := &entities[i]
		for _, term := range e.SearchTerms() {
			nt := jptext.Normalize(term, norm)
			if nt == "" {
				continue
			}
			runes := []rune(nt)
			n := len(runes)
			if n > maxPrefix {
				n = maxPrefix
			}
			for l := 1; l <= n; l++ {
				p := string(runes[:l])
				set := sets[p]
				if set == nil {
					set = make(map[string]struct{})
					sets[p] = set
				}
				set[e.ID] = struct{}{}
			}
		}
	}

	trie := patricia.NewTrie()
	idBytes := 0
	for p, set := range sets {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
			idBytes += len(id)
		}
		// deterministic bucket order across rebuilds
		sort.Strings(ids)
		trie.Insert(patricia.Prefix(p), ids)
	}

	return &prefixIndex{
		trie:      trie,
		maxPrefix: maxPrefix,
		buckets:   len(sets),
		idBytes:   idBytes,
	}
}

// candidates returns the bucket for the query truncated to the bounded
// prefix length. The query must already be normalized and non-empty.
func (ix *prefixIndex) candidates(normQuery string) []string {
	runes := []rune(normQuery)
	if len(runes) > ix.maxPrefix {
		runes = runes[:ix.maxPrefix]
	}
	item := ix.trie.Get(patricia.Prefix(string(runes)))
	if item == nil {
		return nil
	}
	return item.([]string)
}

func (ix *prefixIndex) approxSizeBytes() int {
	return ix.buckets*bucketOverheadBytes + ix.idBytes
}
