package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/noor-reader/noor/internal/app/engagement"
	"github.com/noor-reader/noor/internal/domain"
)

// ─── Activity ───────────────────────────────────────────────────────────────

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var in engagement.ActivityInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	in.UserID = UserID(r.Context())

	res, err := s.engine.Recorder.RecordActivity(r.Context(), in)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Reads ──────────────────────────────────────────────────────────────────

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.engine.Streaks.Current(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

type levelResponse struct {
	domain.UserLevel
	XPToNextLevel int64   `json:"xpToNextLevel"`
	ProgressPct   float64 `json:"progressPct"`
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	ul, err := s.engine.Levels.CurrentLevel(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	toNext, pct := engagement.LevelProgress(ul)
	writeJSON(w, http.StatusOK, levelResponse{UserLevel: ul, XPToNextLevel: toNext, ProgressPct: pct})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Stats.Stats(r.Context(), UserID(r.Context())))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	recs, err := s.engine.Progress(r.Context(), UserID(r.Context()), limit)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if recs == nil {
		recs = []domain.ProgressRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs})
}

// ─── Achievements ───────────────────────────────────────────────────────────

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked, err := s.engine.Awards.Unlocked(r.Context(), UserID(r.Context()), langs(r)...)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": unlocked,
		"unlocked":     len(unlocked),
		"total":        s.engine.Catalog.Len(),
	})
}

func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Awards.CheckAndAward(r.Context(), UserID(r.Context()))
	if err != nil {
		s.log.Warn("achievement check failed", zap.String("user_id", UserID(r.Context())), zap.Error(err))
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"newAchievements": ids})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"badges": s.engine.Catalog.Display(langs(r)...)})
}

// ─── Guest Import ───────────────────────────────────────────────────────────

func (s *Server) handleGuestImport(w http.ResponseWriter, r *http.Request) {
	streak, err := s.engine.ImportGuest(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

// langs returns the ?lang= value followed by Accept-Language, for the
// catalog's locale matcher.
func langs(r *http.Request) []string {
	var out []string
	if l := r.URL.Query().Get("lang"); l != "" {
		out = append(out, l)
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		out = append(out, al)
	}
	return out
}

// writeEngineError maps domain errors to HTTP status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidActivity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnknownContent):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrGuestAlreadyImported):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStreakContention):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error": map[string]any{
				"message": "internal error",
				"type":    http.StatusText(http.StatusInternalServerError),
			},
		})
	}
}
