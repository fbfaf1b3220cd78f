package engine

import (
	"github.com/hachiko/animatch/internal/metrics"
)

// Favorite actions accepted by SetFavorite.
const (
	FavoriteAdd    = "add"
	FavoriteRemove = "remove"
)

// SetFavorite adds or removes a favorite. Both directions are idempotent:
// re-adding refreshes the created timestamp, removing an absent favorite is a
// no-op.
func (e *Engine) SetFavorite(userID string, animeID int64, action string) error {
	if userID == "" {
		return invalid("user_id", "required")
	}
	if animeID <= 0 {
		return invalid("anime_id", "required")
	}

	switch action {
	case FavoriteAdd:
		if err := e.DB.AddFavorite(userID, animeID); err != nil {
			return storeErr("add favorite", err)
		}
	case FavoriteRemove:
		if err := e.DB.RemoveFavorite(userID, animeID); err != nil {
			return storeErr("remove favorite", err)
		}
	default:
		return invalid("action", "must be add or remove")
	}
	metrics.SignalsRecorded.WithLabelValues("favorite").Inc()
	return nil
}

// Favorites returns the user's favorited entries with covers, newest first.
// Unknown users resolve to an empty list, never an error.
func (e *Engine) Favorites(userID string) ([]Recommendation, error) {
	if userID == "" {
		return nil, invalid("user_id", "required")
	}
	list, err := e.DB.ListFavorites(userID, 0)
	if err != nil {
		return nil, storeErr("list favorites", err)
	}
	return e.withCovers(list), nil
}

// IsFavorite reports whether the user has favorited the anime.
func (e *Engine) IsFavorite(userID string, animeID int64) (bool, error) {
	if userID == "" {
		return false, invalid("user_id", "required")
	}
	if animeID <= 0 {
		return false, invalid("anime_id", "required")
	}
	ok, err := e.DB.IsFavorite(userID, animeID)
	if err != nil {
		return false, storeErr("check favorite", err)
	}
	return ok, nil
}

// Lineup returns a small random carousel: multi-episode shows when tv is
// true, single-episode films otherwise.
func (e *Engine) Lineup(tv bool) ([]Recommendation, error) {
	list, err := e.DB.RandomLineup(tv, 5)
	if err != nil {
		return nil, storeErr("random lineup", err)
	}
	return e.withCovers(list), nil
}
