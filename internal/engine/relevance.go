package engine

import (
	"github.com/hachiko/animatch/internal/store"
)

// SignalKind distinguishes the two relevance signals.
type SignalKind int

const (
	// SignalSearch marks an anime surfacing in a search result set.
	SignalSearch SignalKind = iota
	// SignalClick marks a user clicking an anime in a search result set.
	SignalClick
)

func (k SignalKind) String() string {
	if k == SignalClick {
		return "click"
	}
	return "search"
}

// RecordSignal bumps exactly one weight of the (animeID, term) relevance
// record by 1.0, selected by kind; the other weight is untouched. The weights
// are raw counters; recency weighting is applied at read time by the composer.
func (e *Engine) RecordSignal(animeID int64, term string, kind SignalKind) error {
	existing, err := e.DB.GetTermRelevance(animeID, term)
	if err != nil {
		return storeErr("read term relevance", err)
	}

	rec := existing
	if rec == nil {
		rec = &store.TermRelevance{AnimeID: animeID, SearchTerm: term}
	}
	if kind == SignalClick {
		rec.ClickWeight += 1.0
	} else {
		rec.SearchWeight += 1.0
	}

	if err := e.DB.UpsertTermRelevance(rec); err != nil {
		return storeErr("write term relevance", err)
	}
	return nil
}
