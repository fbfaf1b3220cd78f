package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "catalog: anime with genre and studio links",
		SQL: `
CREATE TABLE anime (
    id         INTEGER PRIMARY KEY,
    title      TEXT NOT NULL,
    score      REAL NOT NULL DEFAULT 0,
    type       TEXT NOT NULL DEFAULT '',
    episodes   INTEGER NOT NULL DEFAULT 0,
    members    INTEGER NOT NULL DEFAULT 0,
    rank       INTEGER NOT NULL DEFAULT 0,
    popularity INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE genres (
    genre_id   INTEGER PRIMARY KEY,
    genre_name TEXT NOT NULL UNIQUE
);

CREATE TABLE anime_genres (
    anime_id INTEGER NOT NULL,
    genre_id INTEGER NOT NULL,
    PRIMARY KEY (anime_id, genre_id),
    FOREIGN KEY (anime_id) REFERENCES anime(id) ON DELETE CASCADE,
    FOREIGN KEY (genre_id) REFERENCES genres(genre_id) ON DELETE CASCADE
);

CREATE TABLE studios (
    studio_id   INTEGER PRIMARY KEY,
    studio_name TEXT NOT NULL UNIQUE
);

CREATE TABLE anime_studios (
    anime_id  INTEGER NOT NULL,
    studio_id INTEGER NOT NULL,
    PRIMARY KEY (anime_id, studio_id),
    FOREIGN KEY (anime_id) REFERENCES anime(id) ON DELETE CASCADE,
    FOREIGN KEY (studio_id) REFERENCES studios(studio_id) ON DELETE CASCADE
);

CREATE INDEX idx_anime_score      ON anime(score DESC);
CREATE INDEX idx_anime_popularity ON anime(popularity);
CREATE INDEX idx_anime_episodes   ON anime(episodes);
`,
	},
	{
		Version:     2,
		Description: "user_favorites: explicit preference signals",
		SQL: `
CREATE TABLE user_favorites (
    id         INTEGER PRIMARY KEY,
    user_id    TEXT NOT NULL,
    anime_id   INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (user_id, anime_id)
);

CREATE INDEX idx_favorites_user ON user_favorites(user_id, created_at DESC);
`,
	},
	{
		Version:     3,
		Description: "user_search_clicks: append-only click log",
		SQL: `
CREATE TABLE user_search_clicks (
    id          INTEGER PRIMARY KEY,
    user_id     TEXT NOT NULL,
    search_term TEXT NOT NULL,
    anime_id    INTEGER NOT NULL,
    clicked_at  INTEGER NOT NULL
);

CREATE INDEX idx_clicks_user    ON user_search_clicks(user_id, clicked_at DESC);
CREATE INDEX idx_clicks_term    ON user_search_clicks(search_term);
CREATE INDEX idx_clicks_anime   ON user_search_clicks(anime_id);
`,
	},
	{
		Version:     4,
		Description: "search_term_decay and anime_search_relevance: scoring state",
		SQL: `
CREATE TABLE search_term_decay (
    user_id          TEXT NOT NULL,
    search_term      TEXT NOT NULL,
    last_searched_at INTEGER NOT NULL,
    search_count     INTEGER NOT NULL DEFAULT 1,
    decay_factor     REAL NOT NULL DEFAULT 1.0,
    PRIMARY KEY (user_id, search_term)
);

CREATE INDEX idx_decay_last ON search_term_decay(user_id, last_searched_at DESC);

CREATE TABLE anime_search_relevance (
    anime_id      INTEGER NOT NULL,
    search_term   TEXT NOT NULL,
    click_weight  REAL NOT NULL DEFAULT 0,
    search_weight REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (anime_id, search_term)
);

CREATE INDEX idx_relevance_term ON anime_search_relevance(search_term);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
