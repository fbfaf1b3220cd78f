package store

import (
	"fmt"
	"time"
)

// AddFavorite records a favorite for (userID, animeID). Idempotent: re-adding
// an existing favorite refreshes its created_at instead of inserting a
// duplicate row.
func (db *DB) AddFavorite(userID string, animeID int64) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO user_favorites (user_id, anime_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, anime_id) DO UPDATE SET created_at = excluded.created_at
	`, userID, animeID, now)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a favorite. Removing an absent favorite is a no-op.
func (db *DB) RemoveFavorite(userID string, animeID int64) error {
	_, err := db.Exec(`
		DELETE FROM user_favorites WHERE user_id = ? AND anime_id = ?
	`, userID, animeID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// IsFavorite reports whether the user has favorited the given anime.
func (db *DB) IsFavorite(userID string, animeID int64) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM user_favorites WHERE user_id = ? AND anime_id = ?
	`, userID, animeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return count > 0, nil
}

// ListFavorites returns the user's favorited catalog entries, most recently
// favorited first. Favorites whose anime no longer exists in the catalog are
// naturally excluded by the join. limit <= 0 means no cap.
func (db *DB) ListFavorites(userID string, limit int) ([]Anime, error) {
	query := `
		SELECT a.id, a.title, a.score, a.type, a.episodes, a.members, a.rank, a.popularity,
		       group_concat(DISTINCT g.genre_name)  AS genres,
		       group_concat(DISTINCT s.studio_name) AS studios
		FROM user_favorites uf
		JOIN anime a              ON a.id = uf.anime_id
		LEFT JOIN anime_genres ag ON ag.anime_id = a.id
		LEFT JOIN genres g        ON g.genre_id = ag.genre_id
		LEFT JOIN anime_studios au ON au.anime_id = a.id
		LEFT JOIN studios s       ON s.studio_id = au.studio_id
		WHERE uf.user_id = ?
		GROUP BY a.id
		ORDER BY uf.created_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()
	return scanAnimeRows(rows)
}
