package store

import (
	"fmt"
	"time"
)

// SearchClick is one row of the append-only click log: the user clicked a
// search result for the given term. Never mutated or deleted.
type SearchClick struct {
	ID         int64
	UserID     string
	SearchTerm string
	AnimeID    int64
	ClickedAt  int64
}

// InsertClick appends a click event to the log.
func (db *DB) InsertClick(userID, searchTerm string, animeID int64, at time.Time) error {
	_, err := db.Exec(`
		INSERT INTO user_search_clicks (user_id, search_term, anime_id, clicked_at)
		VALUES (?, ?, ?, ?)
	`, userID, searchTerm, animeID, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

// RecentClicks returns the user's most recent click events, newest first.
func (db *DB) RecentClicks(userID string, limit int) ([]SearchClick, error) {
	rows, err := db.Query(`
		SELECT id, user_id, search_term, anime_id, clicked_at
		FROM user_search_clicks
		WHERE user_id = ?
		ORDER BY clicked_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent clicks: %w", err)
	}
	defer rows.Close()

	var clicks []SearchClick
	for rows.Next() {
		var c SearchClick
		if err := rows.Scan(&c.ID, &c.UserID, &c.SearchTerm, &c.AnimeID, &c.ClickedAt); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}
