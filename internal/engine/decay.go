package engine

import (
	"math"
	"time"

	"github.com/hachiko/animatch/internal/store"
)

// decayRate is the per-hour exponential decay constant for search-term
// interest. Half-life ≈ 6.93 hours.
const decayRate = 0.1

// RecordSearch updates the decay record for (userID, term). First search of a
// term creates the record at factor 1.0; repeats shrink the factor by
// exp(-0.1 * Δt hours) before bumping the count. Negative clock deltas clamp
// to zero, so rapid repeats leave the factor unchanged.
//
// The factor is folded incrementally from the previous value; no click
// history replay is needed.
func (e *Engine) RecordSearch(userID, term string, now time.Time) error {
	existing, err := e.DB.GetTermDecay(userID, term)
	if err != nil {
		return storeErr("read term decay", err)
	}

	rec := existing
	if rec == nil {
		rec = &store.TermDecay{
			UserID:         userID,
			SearchTerm:     term,
			LastSearchedAt: now.UnixMilli(),
			SearchCount:    1,
			DecayFactor:    1.0,
		}
	} else {
		deltaHours := float64(now.UnixMilli()-rec.LastSearchedAt) / float64(time.Hour/time.Millisecond)
		if deltaHours < 0 {
			deltaHours = 0
		}
		rec.DecayFactor *= math.Exp(-decayRate * deltaHours)
		rec.SearchCount++
		rec.LastSearchedAt = now.UnixMilli()
	}

	if err := e.DB.UpsertTermDecay(rec); err != nil {
		return storeErr("write term decay", err)
	}
	return nil
}
