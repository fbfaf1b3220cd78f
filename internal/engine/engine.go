// Package engine implements the personalization and relevance scoring core:
// per-(user, term) decay tracking, per-(anime, term) relevance accumulation,
// and multi-source recommendation composition with popularity fallback.
//
// The engine is stateless between requests. All scoring state lives in the
// store; decay is recomputed lazily from wall-clock deltas at signal time, so
// no background sweep exists. Concurrent updates to the same key rely on
// SQLite's per-database write serialization.
package engine

import (
	"github.com/hachiko/animatch/internal/covers"
	"github.com/hachiko/animatch/internal/store"
)

// CoverProvider hands out cover image references for result lists.
type CoverProvider interface {
	Next() string
	NextN(n int) []string
	Reset()
}

// Engine orchestrates signal recording and recommendation composition.
type Engine struct {
	DB     *store.DB
	Covers CoverProvider
}

// New creates an Engine over the given store and cover provider. provider may
// be nil, in which case every item gets the default cover reference.
func New(db *store.DB, provider CoverProvider) *Engine {
	return &Engine{DB: db, Covers: provider}
}

// nextCovers returns n cover references, degrading to the default when no
// provider is configured.
func (e *Engine) nextCovers(n int) []string {
	if e.Covers == nil {
		out := make([]string, n)
		for i := range out {
			out[i] = covers.DefaultCover
		}
		return out
	}
	return e.Covers.NextN(n)
}

// withCovers annotates catalog entries with cover references.
func (e *Engine) withCovers(list []store.Anime) []Recommendation {
	refs := e.nextCovers(len(list))
	out := make([]Recommendation, len(list))
	for i, a := range list {
		out[i] = Recommendation{Anime: a, Cover: refs[i]}
	}
	return out
}

// Recommendation is a catalog entry annotated with a cover reference.
type Recommendation struct {
	store.Anime
	Cover string `json:"cover"`
}
