package store

import (
	"database/sql"
	"fmt"
)

// TermDecay is the per-(user, term) decay record. The factor starts at 1.0 on
// first search and shrinks multiplicatively with elapsed time between repeats;
// it is computed in Go by the engine (modernc.org/sqlite has no exp()).
type TermDecay struct {
	UserID         string
	SearchTerm     string
	LastSearchedAt int64
	SearchCount    int
	DecayFactor    float64
}

// GetTermDecay returns the decay record for (userID, term), or nil if the
// user has never searched that term.
func (db *DB) GetTermDecay(userID, term string) (*TermDecay, error) {
	var d TermDecay
	err := db.QueryRow(`
		SELECT user_id, search_term, last_searched_at, search_count, decay_factor
		FROM search_term_decay
		WHERE user_id = ? AND search_term = ?
	`, userID, term).Scan(&d.UserID, &d.SearchTerm, &d.LastSearchedAt, &d.SearchCount, &d.DecayFactor)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get term decay: %w", err)
	}
	return &d, nil
}

// UpsertTermDecay writes a decay record, replacing any existing row for the
// same (user, term) key.
func (db *DB) UpsertTermDecay(d *TermDecay) error {
	_, err := db.Exec(`
		INSERT INTO search_term_decay (user_id, search_term, last_searched_at, search_count, decay_factor)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, search_term) DO UPDATE SET
			last_searched_at = excluded.last_searched_at,
			search_count = excluded.search_count,
			decay_factor = excluded.decay_factor
	`, d.UserID, d.SearchTerm, d.LastSearchedAt, d.SearchCount, d.DecayFactor)
	if err != nil {
		return fmt.Errorf("upsert term decay: %w", err)
	}
	return nil
}

// RecentTermDecays returns the user's decay factors for their most recently
// searched terms, keyed by term.
func (db *DB) RecentTermDecays(userID string, limit int) (map[string]float64, error) {
	rows, err := db.Query(`
		SELECT search_term, decay_factor
		FROM search_term_decay
		WHERE user_id = ?
		ORDER BY last_searched_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent term decays: %w", err)
	}
	defer rows.Close()

	decays := make(map[string]float64)
	for rows.Next() {
		var term string
		var factor float64
		if err := rows.Scan(&term, &factor); err != nil {
			return nil, fmt.Errorf("scan term decay: %w", err)
		}
		decays[term] = factor
	}
	return decays, rows.Err()
}
