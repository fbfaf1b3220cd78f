package engine

import (
	"testing"
	"time"
)

func TestSearchValidation(t *testing.T) {
	e := testEngine(t)
	seedEngineCatalog(t, e)
	now := time.Now()

	if _, err := e.Search("title", "", "u1", now); !IsValidation(err) {
		t.Errorf("empty keyword: err = %v, want ValidationError", err)
	}
	if _, err := e.Search("director", "x", "u1", now); !IsValidation(err) {
		t.Errorf("unknown field: err = %v, want ValidationError", err)
	}
}

func TestSearchDefaultsToTitle(t *testing.T) {
	e := testEngine(t)
	seedEngineCatalog(t, e)

	results, err := e.Search("", "Mecha", "", time.Now())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != 4 {
		t.Fatalf("results = %v, want [Mecha Requiem]", results)
	}
}

func TestSearchByGenreAndStudio(t *testing.T) {
	e := testEngine(t)
	seedEngineCatalog(t, e)
	now := time.Now()

	byGenre, err := e.Search("genre", "Action", "", now)
	if err != nil {
		t.Fatalf("Search genre: %v", err)
	}
	if len(byGenre) != 2 {
		t.Errorf("got %d Action results, want 2", len(byGenre))
	}
	// Score descending: Blade of Dawn before Lone Gunmetal.
	if byGenre[0].ID != 1 {
		t.Errorf("first genre result ID = %d, want 1", byGenre[0].ID)
	}

	byStudio, err := e.Search("studio", "Ironframe", "", now)
	if err != nil {
		t.Fatalf("Search studio: %v", err)
	}
	if len(byStudio) != 1 || byStudio[0].ID != 4 {
		t.Fatalf("got %d studio results, want exactly Mecha Requiem", len(byStudio))
	}
}

func TestSearchRecordsSignalsForKnownUser(t *testing.T) {
	e := testEngine(t)
	seedEngineCatalog(t, e)
	now := time.Now()

	if _, err := e.Search("genre", "Action", "u1", now); err != nil {
		t.Fatalf("Search: %v", err)
	}

	decay, err := e.DB.GetTermDecay("u1", "Action")
	if err != nil {
		t.Fatalf("GetTermDecay: %v", err)
	}
	if decay == nil || decay.SearchCount != 1 || decay.DecayFactor != 1.0 {
		t.Fatalf("decay = %+v, want fresh record", decay)
	}

	// Every returned anime receives a search-weight bump, no click weight.
	for _, id := range []int64{1, 2} {
		rel, err := e.DB.GetTermRelevance(id, "Action")
		if err != nil {
			t.Fatalf("GetTermRelevance(%d): %v", id, err)
		}
		if rel == nil || rel.SearchWeight != 1.0 || rel.ClickWeight != 0 {
			t.Errorf("anime %d relevance = %+v, want search weight 1.0", id, rel)
		}
	}
}

func TestSearchAnonymousWritesNothing(t *testing.T) {
	e := testEngine(t)
	seedEngineCatalog(t, e)

	if _, err := e.Search("genre", "Action", "", time.Now()); err != nil {
		t.Fatalf("Search: %v", err)
	}
	rel, err := e.DB.GetTermRelevance(1, "Action")
	if err != nil {
		t.Fatalf("GetTermRelevance: %v", err)
	}
	if rel != nil {
		t.Errorf("relevance written for anonymous search: %+v", rel)
	}
}

func TestSetFavoriteLifecycle(t *testing.T) {
	e := testEngine(t)
	seedEngineCatalog(t, e)

	if err := e.SetFavorite("u1", 1, FavoriteAdd); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := e.SetFavorite("u1", 1, FavoriteAdd); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	ok, err := e.IsFavorite("u1", 1)
	if err != nil || !ok {
		t.Fatalf("IsFavorite = %v, %v; want true", ok, err)
	}

	favs, err := e.Favorites("u1")
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(favs) != 1 || favs[0].ID != 1 {
		t.Fatalf("favorites = %v, want single entry 1", recIDs(favs))
	}

	if err := e.SetFavorite("u1", 1, FavoriteRemove); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing again is a no-op, not an error.
	if err := e.SetFavorite("u1", 1, FavoriteRemove); err != nil {
		t.Fatalf("re-remove: %v", err)
	}
	ok, err = e.IsFavorite("u1", 1)
	if err != nil || ok {
		t.Fatalf("IsFavorite after remove = %v, %v; want false", ok, err)
	}

	if err := e.SetFavorite("u1", 1, "toggle"); !IsValidation(err) {
		t.Errorf("unknown action: err = %v, want ValidationError", err)
	}
	if err := e.SetFavorite("", 1, FavoriteAdd); !IsValidation(err) {
		t.Errorf("empty user: err = %v, want ValidationError", err)
	}
}

func TestFavoritesUnknownUserEmpty(t *testing.T) {
	e := testEngine(t)
	seedEngineCatalog(t, e)

	favs, err := e.Favorites("nobody")
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(favs) != 0 {
		t.Errorf("got %d favorites for unknown user, want 0", len(favs))
	}
}

func TestLineupSplitsByEpisodeCount(t *testing.T) {
	e := testEngine(t)
	seedEngineCatalog(t, e)

	tv, err := e.Lineup(true)
	if err != nil {
		t.Fatalf("Lineup tv: %v", err)
	}
	for _, r := range tv {
		if r.Episodes <= 1 {
			t.Errorf("tv lineup contains single-episode entry %d", r.ID)
		}
	}

	movies, err := e.Lineup(false)
	if err != nil {
		t.Fatalf("Lineup movies: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != 5 {
		t.Errorf("movie lineup = %v, want [5]", recIDs(movies))
	}
}
