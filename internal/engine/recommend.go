package engine

import (
	"sort"

	"github.com/hachiko/animatch/internal/logging"
	"github.com/hachiko/animatch/internal/metrics"
	"github.com/hachiko/animatch/internal/store"
)

const (
	// DefaultRecommendations is the recommendation list size.
	DefaultRecommendations = 10

	favoriteSnapshot = 10 // newest favorites considered for taste extraction
	recentClickSpan  = 20 // newest clicks considered for term weighting
	recentDecayTerms = 10 // newest decay records consulted per user
	topTerms         = 3  // highest-weighted terms expanded into candidates
	perTermResults   = 3  // candidates taken per term
)

// Recommend composes a ranked, deduplicated recommendation list for the user:
// favorite-based candidates first, then search-based candidates, padded with
// a popularity fallback. Read-only with respect to decay and relevance state.
//
// Personalization reads degrade: if favorites or click history cannot be
// fetched, that branch is skipped and the fallback fills the list. Only a
// failing fallback read returns an error.
func (e *Engine) Recommend(userID string, max int) ([]Recommendation, error) {
	if userID == "" {
		return nil, invalid("user_id", "required")
	}
	if max <= 0 {
		max = DefaultRecommendations
	}

	var candidates []store.Anime

	// Favorite-based candidates.
	favorites, err := e.DB.ListFavorites(userID, favoriteSnapshot)
	if err != nil {
		logging.Warn().Err(err).Str("user", userID).Msg("favorites unavailable, skipping taste candidates")
		favorites = nil
	}
	if len(favorites) > 0 {
		genres, studios := labelSets(favorites)
		matches, err := e.DB.SimilarByTaste(userID, genres, studios, favoriteSnapshot)
		if err != nil {
			logging.Warn().Err(err).Str("user", userID).Msg("taste match query failed")
		}
		for _, m := range matches {
			candidates = append(candidates, m.Anime)
		}
	}

	// Search-based candidates.
	candidates = append(candidates, e.searchCandidates(userID)...)

	// Merge and dedupe, keeping the first occurrence of each ID. Favorite
	// candidates were appended first, so they are never displaced.
	seen := make(map[int64]struct{}, len(candidates))
	merged := candidates[:0]
	for _, a := range candidates {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		merged = append(merged, a)
	}

	// Fallback fill by score then member count.
	if len(merged) < max {
		exclude := make([]int64, 0, len(seen))
		for id := range seen {
			exclude = append(exclude, id)
		}
		fill, err := e.DB.FallbackFill(userID, exclude, max-len(merged))
		if err != nil {
			if len(merged) == 0 {
				return nil, storeErr("fallback fill", err)
			}
			logging.Warn().Err(err).Str("user", userID).Msg("fallback fill failed, returning partial list")
		}
		for _, a := range fill {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			merged = append(merged, a)
		}
	}

	if len(merged) > max {
		merged = merged[:max]
	}

	metrics.Recommendations.Inc()
	return e.withCovers(merged), nil
}

// searchCandidates expands the user's recent click history into candidates:
// the three highest-weighted terms, top three anime each by effective
// relevance. Term weight sums the user's decay factors over the recent
// clicks of that term, defaulting to 1.0 where no decay record exists.
func (e *Engine) searchCandidates(userID string) []store.Anime {
	clicks, err := e.DB.RecentClicks(userID, recentClickSpan)
	if err != nil {
		logging.Warn().Err(err).Str("user", userID).Msg("click history unavailable, skipping search candidates")
		return nil
	}
	if len(clicks) == 0 {
		return nil
	}

	decays, err := e.DB.RecentTermDecays(userID, recentDecayTerms)
	if err != nil {
		logging.Warn().Err(err).Str("user", userID).Msg("decay records unavailable, using neutral weights")
		decays = nil
	}

	weights := make(map[string]float64)
	for _, c := range clicks {
		w, ok := decays[c.SearchTerm]
		if !ok {
			w = 1.0
		}
		weights[c.SearchTerm] += w
	}

	terms := make([]string, 0, len(weights))
	for t := range weights {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if weights[terms[i]] != weights[terms[j]] {
			return weights[terms[i]] > weights[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > topTerms {
		terms = terms[:topTerms]
	}

	var out []store.Anime
	for _, term := range terms {
		related, err := e.DB.AnimeForTerm(term, userID)
		if err != nil {
			logging.Warn().Err(err).Str("term", term).Msg("relevance lookup failed")
			continue
		}

		// Effective relevance: fixed 1.0 coefficient on clicks, the
		// aggregate term weight on searches. Never persisted.
		termWeight := weights[term]
		sort.Slice(related, func(i, j int) bool {
			ei := related[i].ClickWeight + related[i].SearchWeight*termWeight
			ej := related[j].ClickWeight + related[j].SearchWeight*termWeight
			if ei != ej {
				return ei > ej
			}
			return related[i].ID < related[j].ID
		})
		if len(related) > perTermResults {
			related = related[:perTermResults]
		}
		for _, r := range related {
			out = append(out, r.Anime)
		}
	}
	return out
}

// labelSets extracts the distinct genre and studio labels across favorites.
func labelSets(favorites []store.Anime) (genres, studios []string) {
	gset := make(map[string]struct{})
	sset := make(map[string]struct{})
	for _, a := range favorites {
		for _, g := range a.Genres {
			if _, ok := gset[g]; !ok {
				gset[g] = struct{}{}
				genres = append(genres, g)
			}
		}
		for _, s := range a.Studios {
			if _, ok := sset[s]; !ok {
				sset[s] = struct{}{}
				studios = append(studios, s)
			}
		}
	}
	return genres, studios
}
