package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Anime is a catalog entry. The catalog is owned by the seed pipeline and is
// read-only input to scoring; genre and studio labels are flattened from the
// link tables, deduplicated, order unspecified.
type Anime struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Score      float64  `json:"score"`
	Type       string   `json:"type"`
	Episodes   int      `json:"episodes"`
	Members    int      `json:"members"`
	Rank       int      `json:"rank"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
	Studios    []string `json:"studios"`
}

// animeSelect is the shared projection: one row per anime with genre and
// studio names concatenated by the link-table joins.
const animeSelect = `
	SELECT a.id, a.title, a.score, a.type, a.episodes, a.members, a.rank, a.popularity,
	       group_concat(DISTINCT g.genre_name)  AS genres,
	       group_concat(DISTINCT s.studio_name) AS studios
	FROM anime a
	LEFT JOIN anime_genres ag ON ag.anime_id = a.id
	LEFT JOIN genres g        ON g.genre_id = ag.genre_id
	LEFT JOIN anime_studios au ON au.anime_id = a.id
	LEFT JOIN studios s       ON s.studio_id = au.studio_id
`

// UpsertAnime inserts or replaces a catalog entry along with its genre and
// studio links. Used by the seed command; the engine never writes the catalog.
func (db *DB) UpsertAnime(a *Anime) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert anime: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO anime (id, title, score, type, episodes, members, rank, popularity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, score = excluded.score, type = excluded.type,
			episodes = excluded.episodes, members = excluded.members,
			rank = excluded.rank, popularity = excluded.popularity
	`, a.ID, a.Title, a.Score, a.Type, a.Episodes, a.Members, a.Rank, a.Popularity)
	if err != nil {
		return fmt.Errorf("upsert anime %d: %w", a.ID, err)
	}

	if _, err := tx.Exec("DELETE FROM anime_genres WHERE anime_id = ?", a.ID); err != nil {
		return fmt.Errorf("clear genre links: %w", err)
	}
	for _, genre := range a.Genres {
		if _, err := tx.Exec("INSERT OR IGNORE INTO genres (genre_name) VALUES (?)", genre); err != nil {
			return fmt.Errorf("ensure genre %q: %w", genre, err)
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO anime_genres (anime_id, genre_id)
			SELECT ?, genre_id FROM genres WHERE genre_name = ?
		`, a.ID, genre); err != nil {
			return fmt.Errorf("link genre %q: %w", genre, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM anime_studios WHERE anime_id = ?", a.ID); err != nil {
		return fmt.Errorf("clear studio links: %w", err)
	}
	for _, studio := range a.Studios {
		if _, err := tx.Exec("INSERT OR IGNORE INTO studios (studio_name) VALUES (?)", studio); err != nil {
			return fmt.Errorf("ensure studio %q: %w", studio, err)
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO anime_studios (anime_id, studio_id)
			SELECT ?, studio_id FROM studios WHERE studio_name = ?
		`, a.ID, studio); err != nil {
			return fmt.Errorf("link studio %q: %w", studio, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert anime: %w", err)
	}
	return nil
}

// GetAnime returns a catalog entry by ID, or nil if not found.
func (db *DB) GetAnime(id int64) (*Anime, error) {
	rows, err := db.Query(animeSelect+" WHERE a.id = ? GROUP BY a.id", id)
	if err != nil {
		return nil, fmt.Errorf("get anime %d: %w", id, err)
	}
	defer rows.Close()

	list, err := scanAnimeRows(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// CountAnime returns the catalog size.
func (db *DB) CountAnime() (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM anime").Scan(&n)
	return n, err
}

// SearchAnime returns catalog entries matching the keyword against the given
// field (title, genre or studio), ordered by score descending.
func (db *DB) SearchAnime(field, keyword string, limit int) ([]Anime, error) {
	var where string
	switch field {
	case "title":
		where = "WHERE a.title LIKE ?"
	case "genre":
		where = "WHERE g.genre_name LIKE ?"
	case "studio":
		where = "WHERE s.studio_name LIKE ?"
	default:
		return nil, fmt.Errorf("unknown search field %q", field)
	}

	query := fmt.Sprintf("%s %s GROUP BY a.id ORDER BY a.score DESC LIMIT ?", animeSelect, where)
	rows, err := db.Query(query, "%"+keyword+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search anime: %w", err)
	}
	defer rows.Close()
	return scanAnimeRows(rows)
}

// ListRanked returns catalog entries under one of three sort orders:
// score descending, popularity ascending or rank ascending. Lower popularity
// and rank values mean better placement.
func (db *DB) ListRanked(sortBy string, limit int) ([]Anime, error) {
	var order string
	switch sortBy {
	case "score":
		order = "ORDER BY a.score DESC"
	case "popularity":
		order = "ORDER BY a.popularity ASC"
	case "rank":
		order = "ORDER BY a.rank ASC"
	default:
		order = "ORDER BY a.score DESC"
	}

	query := fmt.Sprintf("%s GROUP BY a.id %s LIMIT ?", animeSelect, order)
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list ranked: %w", err)
	}
	defer rows.Close()
	return scanAnimeRows(rows)
}

// AllAnime returns every catalog entry. Used by hot-score ranking, which is
// computed in Go so degenerate popularity values can be guarded.
func (db *DB) AllAnime() ([]Anime, error) {
	rows, err := db.Query(animeSelect + " GROUP BY a.id")
	if err != nil {
		return nil, fmt.Errorf("all anime: %w", err)
	}
	defer rows.Close()
	return scanAnimeRows(rows)
}

// RandomLineup returns up to limit random entries filtered by episode count:
// multi-episode shows when tv is true, single-episode films otherwise.
func (db *DB) RandomLineup(tv bool, limit int) ([]Anime, error) {
	where := "WHERE a.episodes = 1"
	if tv {
		where = "WHERE a.episodes > 1"
	}
	query := fmt.Sprintf("%s %s GROUP BY a.id ORDER BY RANDOM() LIMIT ?", animeSelect, where)
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("random lineup: %w", err)
	}
	defer rows.Close()
	return scanAnimeRows(rows)
}

// SimilarByTaste returns entries sharing genres or studios with the given
// label sets, excluding the user's favorites. Each row carries the count of
// distinct overlapping genres and studios; ordered by total overlap then score.
func (db *DB) SimilarByTaste(userID string, genres, studios []string, limit int) ([]TasteMatch, error) {
	genreClause := "NULL"
	if len(genres) > 0 {
		genreClause = placeholders(len(genres))
	}
	studioClause := "NULL"
	if len(studios) > 0 {
		studioClause = placeholders(len(studios))
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.title, a.score, a.type, a.episodes, a.members, a.rank, a.popularity,
		       group_concat(DISTINCT g.genre_name)  AS genres,
		       group_concat(DISTINCT s.studio_name) AS studios,
		       COUNT(DISTINCT CASE WHEN g.genre_name IN (%s) THEN g.genre_name END)  AS genre_match,
		       COUNT(DISTINCT CASE WHEN s.studio_name IN (%s) THEN s.studio_name END) AS studio_match
		FROM anime a
		LEFT JOIN anime_genres ag ON ag.anime_id = a.id
		LEFT JOIN genres g        ON g.genre_id = ag.genre_id
		LEFT JOIN anime_studios au ON au.anime_id = a.id
		LEFT JOIN studios s       ON s.studio_id = au.studio_id
		WHERE a.id NOT IN (SELECT anime_id FROM user_favorites WHERE user_id = ?)
		GROUP BY a.id
		HAVING genre_match > 0 OR studio_match > 0
		ORDER BY (genre_match + studio_match) DESC, a.score DESC
		LIMIT ?
	`, genreClause, studioClause)

	args := make([]any, 0, len(genres)+len(studios)+2)
	for _, g := range genres {
		args = append(args, g)
	}
	for _, s := range studios {
		args = append(args, s)
	}
	args = append(args, userID, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("similar by taste: %w", err)
	}
	defer rows.Close()

	var matches []TasteMatch
	for rows.Next() {
		var m TasteMatch
		var genreNames, studioNames sql.NullString
		if err := rows.Scan(&m.ID, &m.Title, &m.Score, &m.Type, &m.Episodes, &m.Members,
			&m.Rank, &m.Popularity, &genreNames, &studioNames,
			&m.GenreMatch, &m.StudioMatch); err != nil {
			return nil, fmt.Errorf("scan taste match: %w", err)
		}
		m.Genres = splitConcat(genreNames)
		m.Studios = splitConcat(studioNames)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// TasteMatch is an Anime annotated with its genre and studio overlap counts
// against a user's favorite sets.
type TasteMatch struct {
	Anime
	GenreMatch  int
	StudioMatch int
}

// FallbackFill returns catalog entries excluding the user's favorites and any
// already-selected IDs, ordered by score then member count descending.
func (db *DB) FallbackFill(userID string, excludeIDs []int64, limit int) ([]Anime, error) {
	exclude := "NULL"
	args := []any{userID}
	if len(excludeIDs) > 0 {
		exclude = placeholders(len(excludeIDs))
	}
	for _, id := range excludeIDs {
		args = append(args, id)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`%s
		WHERE a.id NOT IN (SELECT anime_id FROM user_favorites WHERE user_id = ?)
		AND a.id NOT IN (%s)
		GROUP BY a.id
		ORDER BY a.score DESC, a.members DESC
		LIMIT ?
	`, animeSelect, exclude)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fallback fill: %w", err)
	}
	defer rows.Close()
	return scanAnimeRows(rows)
}

// placeholders builds a "?,?,..." string of n placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return "NULL"
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// splitConcat splits a group_concat result into labels. NULL (no joined rows)
// yields an empty set.
func splitConcat(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	return strings.Split(s.String, ",")
}

func scanAnimeRows(rows *sql.Rows) ([]Anime, error) {
	var list []Anime
	for rows.Next() {
		var a Anime
		var genres, studios sql.NullString
		if err := rows.Scan(&a.ID, &a.Title, &a.Score, &a.Type, &a.Episodes, &a.Members,
			&a.Rank, &a.Popularity, &genres, &studios); err != nil {
			return nil, fmt.Errorf("scan anime: %w", err)
		}
		a.Genres = splitConcat(genres)
		a.Studios = splitConcat(studios)
		list = append(list, a)
	}
	return list, rows.Err()
}
