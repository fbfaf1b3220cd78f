package engine

import (
	"time"

	"github.com/hachiko/animatch/internal/logging"
	"github.com/hachiko/animatch/internal/metrics"
	"github.com/hachiko/animatch/internal/store"
)

// searchFields are the accepted values for the search type parameter.
var searchFields = map[string]bool{
	"title":  true,
	"genre":  true,
	"studio": true,
}

// Search returns up to MaxListResults catalog entries matching the keyword,
// ordered by score descending. When userID is present the call doubles as a
// preference signal: the term's decay record is updated and every result gets
// a search-weight bump. Signal write failures are logged and swallowed; the
// result set is still returned.
func (e *Engine) Search(field, keyword, userID string, now time.Time) ([]store.Anime, error) {
	if keyword == "" {
		return nil, invalid("keyword", "required")
	}
	if field == "" {
		field = "title"
	}
	if !searchFields[field] {
		return nil, invalid("type", "must be one of title, genre, studio")
	}

	results, err := e.DB.SearchAnime(field, keyword, MaxListResults)
	if err != nil {
		return nil, storeErr("search anime", err)
	}

	if userID != "" {
		if err := e.RecordSearch(userID, keyword, now); err != nil {
			metrics.SignalsDropped.WithLabelValues("search").Inc()
			logging.Warn().Err(err).Str("user", userID).Str("term", keyword).Msg("dropped decay update")
		} else {
			metrics.SignalsRecorded.WithLabelValues("search").Inc()
		}
		for _, a := range results {
			if err := e.RecordSignal(a.ID, keyword, SignalSearch); err != nil {
				metrics.SignalsDropped.WithLabelValues("search").Inc()
				logging.Warn().Err(err).Int64("anime", a.ID).Str("term", keyword).Msg("dropped relevance update")
			}
		}
	}

	return results, nil
}

// RecordClick appends a click event and folds it into the decay and relevance
// state. The click row is the primary write and its failure is the caller's
// error; the two scoring updates are independent best-effort writes. Partial
// success is accepted, not rolled back.
func (e *Engine) RecordClick(userID, term string, animeID int64, now time.Time) error {
	if userID == "" {
		return invalid("user_id", "required")
	}
	if term == "" {
		return invalid("search_term", "required")
	}
	if animeID <= 0 {
		return invalid("anime_id", "required")
	}

	if err := e.DB.InsertClick(userID, term, animeID, now); err != nil {
		return storeErr("insert click", err)
	}
	metrics.SignalsRecorded.WithLabelValues("click").Inc()

	if err := e.RecordSearch(userID, term, now); err != nil {
		metrics.SignalsDropped.WithLabelValues("click").Inc()
		logging.Warn().Err(err).Str("user", userID).Str("term", term).Msg("dropped decay update after click")
	}
	if err := e.RecordSignal(animeID, term, SignalClick); err != nil {
		metrics.SignalsDropped.WithLabelValues("click").Inc()
		logging.Warn().Err(err).Int64("anime", animeID).Str("term", term).Msg("dropped relevance update after click")
	}
	return nil
}
