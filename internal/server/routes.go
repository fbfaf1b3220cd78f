package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hachiko/animatch/internal/engine"
	"github.com/hachiko/animatch/internal/logging"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}

	recs, err := s.engine.Recommend(userID, engine.DefaultRecommendations)
	if err != nil {
		// Personalization failures degrade to an empty list rather than an
		// error page; the signal state is simply unavailable right now.
		logging.Warn().Err(err).Str("user", userID).Msg("recommend degraded to empty")
		recs = nil
	}
	if recs == nil {
		recs = []engine.Recommendation{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(recs),
		"results": recs,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := s.engine.Search(q.Get("type"), q.Get("keyword"), q.Get("user_id"), time.Now())
	if err != nil {
		if engine.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Primary read failure: transient, distinguishable from "no results".
		writeError(w, http.StatusServiceUnavailable, "search temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(results),
		"results": results,
	})
}

type clickRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	SearchTerm string `json:"search_term" validate:"required"`
	AnimeID    int64  `json:"anime_id" validate:"required,gt=0"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.engine.RecordClick(req.UserID, req.SearchTerm, req.AnimeID, time.Now()); err != nil {
		if engine.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "click not recorded")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sortBy := r.URL.Query().Get("sort")

	list, err := s.engine.Ranking(sortBy, limit)
	if err != nil {
		if engine.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "ranking temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(list), "results": list})
}

func (s *Server) handleHotRecommend(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := s.engine.HotRecommend(limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "hot recommend temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(items), "results": items})
}

type favoriteRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	AnimeID int64  `json:"anime_id" validate:"required,gt=0"`
	Action  string `json:"action" validate:"required,oneof=add remove"`
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.engine.SetFavorite(req.UserID, req.AnimeID, req.Action); err != nil {
		if engine.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "favorite not saved")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}

	list, err := s.engine.Favorites(userID)
	if err != nil && !errors.Is(err, engine.ErrStorageUnavailable) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		// Unknown users and storage hiccups both resolve to an empty list so
		// the front end can degrade.
		logging.Warn().Err(err).Str("user", userID).Msg("favorites degraded to empty")
	}
	if list == nil {
		list = []engine.Recommendation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCheckFavorite(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	animeID, _ := strconv.ParseInt(r.URL.Query().Get("anime_id"), 10, 64)

	favorited, err := s.engine.IsFavorite(userID, animeID)
	if err != nil {
		if engine.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "check temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorited": favorited})
}

func (s *Server) handleTVLineup(w http.ResponseWriter, r *http.Request) {
	s.lineup(w, true)
}

func (s *Server) handleMovieLineup(w http.ResponseWriter, r *http.Request) {
	s.lineup(w, false)
}

func (s *Server) lineup(w http.ResponseWriter, tv bool) {
	list, err := s.engine.Lineup(tv)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "lineup temporarily unavailable")
		return
	}
	if list == nil {
		list = []engine.Recommendation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCoverReset(w http.ResponseWriter, r *http.Request) {
	if s.engine.Covers != nil {
		s.engine.Covers.Reset()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
