package store

import (
	"database/sql"
	"fmt"
)

// TermRelevance is the per-(anime, term) accumulator. Both weights are plain
// event counters and only ever increase; normalization and recency weighting
// happen at read time in the engine.
type TermRelevance struct {
	AnimeID      int64
	SearchTerm   string
	ClickWeight  float64
	SearchWeight float64
}

// GetTermRelevance returns the relevance record for (animeID, term), or nil
// if no search or click has associated them yet.
func (db *DB) GetTermRelevance(animeID int64, term string) (*TermRelevance, error) {
	var r TermRelevance
	err := db.QueryRow(`
		SELECT anime_id, search_term, click_weight, search_weight
		FROM anime_search_relevance
		WHERE anime_id = ? AND search_term = ?
	`, animeID, term).Scan(&r.AnimeID, &r.SearchTerm, &r.ClickWeight, &r.SearchWeight)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get term relevance: %w", err)
	}
	return &r, nil
}

// UpsertTermRelevance writes a relevance record, replacing any existing row
// for the same (anime, term) key.
func (db *DB) UpsertTermRelevance(r *TermRelevance) error {
	_, err := db.Exec(`
		INSERT INTO anime_search_relevance (anime_id, search_term, click_weight, search_weight)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(anime_id, search_term) DO UPDATE SET
			click_weight = excluded.click_weight,
			search_weight = excluded.search_weight
	`, r.AnimeID, r.SearchTerm, r.ClickWeight, r.SearchWeight)
	if err != nil {
		return fmt.Errorf("upsert term relevance: %w", err)
	}
	return nil
}

// RelevantAnime pairs a catalog entry with its raw relevance counters for one
// search term.
type RelevantAnime struct {
	Anime
	ClickWeight  float64
	SearchWeight float64
}

// AnimeForTerm returns the catalog entries associated with a search term via
// the relevance table, excluding the user's favorites. Raw weights are
// returned; effective relevance is composed by the caller.
func (db *DB) AnimeForTerm(term, excludeUserID string) ([]RelevantAnime, error) {
	rows, err := db.Query(`
		SELECT a.id, a.title, a.score, a.type, a.episodes, a.members, a.rank, a.popularity,
		       group_concat(DISTINCT g.genre_name)  AS genres,
		       group_concat(DISTINCT s.studio_name) AS studios,
		       r.click_weight, r.search_weight
		FROM anime_search_relevance r
		JOIN anime a              ON a.id = r.anime_id
		LEFT JOIN anime_genres ag ON ag.anime_id = a.id
		LEFT JOIN genres g        ON g.genre_id = ag.genre_id
		LEFT JOIN anime_studios au ON au.anime_id = a.id
		LEFT JOIN studios s       ON s.studio_id = au.studio_id
		WHERE r.search_term = ?
		AND a.id NOT IN (SELECT anime_id FROM user_favorites WHERE user_id = ?)
		GROUP BY a.id
	`, term, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("anime for term: %w", err)
	}
	defer rows.Close()

	var list []RelevantAnime
	for rows.Next() {
		var ra RelevantAnime
		var genres, studios sql.NullString
		if err := rows.Scan(&ra.ID, &ra.Title, &ra.Score, &ra.Type, &ra.Episodes, &ra.Members,
			&ra.Rank, &ra.Popularity, &genres, &studios,
			&ra.ClickWeight, &ra.SearchWeight); err != nil {
			return nil, fmt.Errorf("scan relevant anime: %w", err)
		}
		ra.Genres = splitConcat(genres)
		ra.Studios = splitConcat(studios)
		list = append(list, ra)
	}
	return list, rows.Err()
}
