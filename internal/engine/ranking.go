package engine

import (
	"sort"
)

// MaxListResults caps general ranking and hot-recommend responses regardless
// of the caller-requested size.
const MaxListResults = 20

// ClampLimit normalizes a caller-requested list size: non-positive values
// fall back to the default of 10, anything above MaxListResults is clamped.
func ClampLimit(n int) int {
	if n <= 0 {
		return 10
	}
	if n > MaxListResults {
		return MaxListResults
	}
	return n
}

// HotScore blends absolute quality with inverse popularity rank:
// score*0.7 + (1_000_000/popularity)*0.3. Lower popularity values mean more
// popular, hence the inversion. popularity <= 0 is degenerate input: the
// popularity term is substituted with 0 and ranked is false, never NaN/Inf.
func HotScore(score float64, popularity int) (hot float64, ranked bool) {
	base := score * 0.7
	if popularity <= 0 {
		return base, false
	}
	return base + (1_000_000/float64(popularity))*0.3, true
}

// Ranking returns catalog entries under the requested sort order (score,
// popularity or rank; score by default), capped at MaxListResults.
func (e *Engine) Ranking(sortBy string, limit int) ([]Recommendation, error) {
	switch sortBy {
	case "", "score", "popularity", "rank":
	default:
		return nil, invalid("sort", "must be one of score, popularity, rank")
	}

	list, err := e.DB.ListRanked(sortBy, ClampLimit(limit))
	if err != nil {
		return nil, storeErr("list ranked", err)
	}
	return e.withCovers(list), nil
}

// HotItem is a Recommendation annotated with its hot score. PopularityRanked
// is false when the popularity term was guarded out.
type HotItem struct {
	Recommendation
	HotScore         float64 `json:"hot_score"`
	PopularityRanked bool    `json:"popularity_ranked"`
}

// HotRecommend returns the catalog ordered by hot score descending, capped at
// MaxListResults. Scores are computed here rather than in SQL so degenerate
// popularity values can be guarded.
func (e *Engine) HotRecommend(limit int) ([]HotItem, error) {
	list, err := e.DB.AllAnime()
	if err != nil {
		return nil, storeErr("load catalog", err)
	}

	items := make([]HotItem, len(list))
	for i, a := range list {
		hot, ranked := HotScore(a.Score, a.Popularity)
		items[i] = HotItem{
			Recommendation:   Recommendation{Anime: a},
			HotScore:         hot,
			PopularityRanked: ranked,
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].HotScore != items[j].HotScore {
			return items[i].HotScore > items[j].HotScore
		}
		return items[i].ID < items[j].ID
	})

	limit = ClampLimit(limit)
	if len(items) > limit {
		items = items[:limit]
	}
	refs := e.nextCovers(len(items))
	for i := range items {
		items[i].Cover = refs[i]
	}
	return items, nil
}
