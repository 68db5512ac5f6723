package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth/gothic"
	"github.com/openmat/ringside/internal/bracket"
	"github.com/openmat/ringside/internal/httputil"
	"github.com/openmat/ringside/internal/middleware"
	"github.com/openmat/ringside/internal/service"
	"github.com/openmat/ringside/internal/store"
)

func newRouter(database *sqlx.DB, sessionManager *scs.SessionManager) http.Handler {
	bracketStore := store.NewBracketStore(database)
	adminStore := store.NewAdminStore(database)
	locks := service.NewDivisionLocks()

	bracketService := service.NewBracketService(database, bracketStore, locks)
	matchService := service.NewMatchService(database, bracketStore, locks)
	divisionService := service.NewDivisionService(database, bracketStore, locks)
	ringService := service.NewRingService(database, bracketStore)
	adminService := service.NewAdminService(database, adminStore)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)

	// Public reads: spectators and the venue displays hit these.
	r.Get("/rings", func(w http.ResponseWriter, r *http.Request) {
		rings, err := ringService.GetRings(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to list rings", err)
			return
		}
		httputil.JSON(w, http.StatusOK, rings)
	})

	r.Get("/rings/{id}/matches", func(w http.ResponseWriter, r *http.Request) {
		ringID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httputil.BadRequest(w, "Invalid ring ID", err)
			return
		}

		schedule, err := ringService.GetRingSchedule(r.Context(), ringID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				httputil.NotFound(w, "Ring not found", err)
				return
			}
			httputil.InternalServerError(w, "Failed to get ring schedule", err)
			return
		}

		type ringMatch struct {
			MatchID     uuid.UUID           `json:"match_id"`
			MatchNumber *int64              `json:"match_number"`
			RoundName   string              `json:"round_name"`
			Status      bracket.MatchStatus `json:"status"`
			Competitor1 string              `json:"competitor1"`
			Competitor2 string              `json:"competitor2"`
		}
		out := make([]ringMatch, 0, len(schedule))
		for _, s := range schedule {
			out = append(out, ringMatch{
				MatchID:     s.Match.ID,
				MatchNumber: s.Match.MatchNumber,
				RoundName:   s.Match.RoundName,
				Status:      s.Match.Status,
				Competitor1: s.Competitor1.Name,
				Competitor2: s.Competitor2.Name,
			})
		}
		httputil.JSON(w, http.StatusOK, out)
	})

	r.Get("/divisions", func(w http.ResponseWriter, r *http.Request) {
		divisions, err := divisionService.GetDivisions(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to list divisions", err)
			return
		}
		httputil.JSON(w, http.StatusOK, divisions)
	})

	r.Get("/divisions/{id}/competitors", func(w http.ResponseWriter, r *http.Request) {
		divisionID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.BadRequest(w, "Invalid division ID", err)
			return
		}
		competitors, err := divisionService.GetCompetitors(r.Context(), divisionID)
		if err != nil {
			httputil.InternalServerError(w, "Failed to list competitors", err)
			return
		}
		httputil.JSON(w, http.StatusOK, competitors)
	})

	r.Get("/divisions/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
		divisionID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.BadRequest(w, "Invalid division ID", err)
			return
		}

		views, err := bracketService.GetBracketData(r.Context(), divisionID)
		if err != nil {
			httputil.InternalServerError(w, "Failed to get bracket", err)
			return
		}
		if len(views) == 0 {
			httputil.NotFound(w, "No bracket found for this division", nil)
			return
		}
		httputil.JSON(w, http.StatusOK, views)
	})

	// Desk operations require an admin session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(sessionManager, adminStore))

		r.Post("/rings", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
				httputil.BadRequest(w, "Ring name is required", err)
				return
			}

			ring, err := ringService.CreateRing(r.Context(), req.Name)
			if err != nil {
				httputil.InternalServerError(w, "Failed to create ring", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, ring)
		})

		r.Delete("/rings/{id}", func(w http.ResponseWriter, r *http.Request) {
			ringID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httputil.BadRequest(w, "Invalid ring ID", err)
				return
			}
			if err := ringService.DeleteRing(r.Context(), ringID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Ring not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to delete ring", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/divisions", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
				httputil.BadRequest(w, "Division name is required", err)
				return
			}

			division, err := divisionService.CreateDivision(r.Context(), req.Name)
			if err != nil {
				httputil.InternalServerError(w, "Failed to create division", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, division)
		})

		r.Put("/divisions/{id}", func(w http.ResponseWriter, r *http.Request) {
			divisionID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid division ID", err)
				return
			}
			var req struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
				httputil.BadRequest(w, "Division name is required", err)
				return
			}
			if err := divisionService.RenameDivision(r.Context(), divisionID, req.Name); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Division not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to update division", err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]string{"message": "Division updated"})
		})

		r.Delete("/divisions/{id}", func(w http.ResponseWriter, r *http.Request) {
			divisionID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid division ID", err)
				return
			}
			if err := divisionService.DeleteDivision(r.Context(), divisionID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Division not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to delete division", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/divisions/{id}/competitors", func(w http.ResponseWriter, r *http.Request) {
			divisionID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid division ID", err)
				return
			}
			var req struct {
				Names []string `json:"names"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Names) == 0 {
				httputil.BadRequest(w, "At least one competitor name is required", err)
				return
			}

			competitors, err := divisionService.AddCompetitors(r.Context(), divisionID, req.Names)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Division not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to add competitors", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, competitors)
		})

		r.Delete("/competitors/{id}", func(w http.ResponseWriter, r *http.Request) {
			competitorID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid competitor ID", err)
				return
			}
			if err := divisionService.DeleteCompetitor(r.Context(), competitorID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Competitor not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to delete competitor", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/divisions/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
			divisionID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid division ID", err)
				return
			}

			matches, err := bracketService.GenerateBracket(r.Context(), divisionID)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					httputil.NotFound(w, "Division not found", err)
				case errors.Is(err, bracket.ErrInsufficientCompetitors):
					httputil.BadRequest(w, err.Error(), err)
				case errors.Is(err, bracket.ErrBracketExists):
					httputil.Conflict(w, err.Error(), err)
				default:
					httputil.InternalServerError(w, "Failed to generate bracket", err)
				}
				return
			}

			httputil.JSON(w, http.StatusCreated, map[string]any{
				"message":     "Bracket generated",
				"match_count": len(matches),
			})
		})

		r.Post("/matches/{id}/result", func(w http.ResponseWriter, r *http.Request) {
			matchID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid match ID", err)
				return
			}
			var req struct {
				Status   bracket.MatchStatus `json:"status"`
				WinnerID *uuid.UUID          `json:"winner_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}

			data, err := matchService.RecordResult(r.Context(), matchID, req.Status, req.WinnerID)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					httputil.NotFound(w, "Match not found", err)
				case errors.Is(err, bracket.ErrMissingWinner),
					errors.Is(err, bracket.ErrWinnerNotInMatch),
					errors.Is(err, bracket.ErrInvalidStatus):
					httputil.BadRequest(w, err.Error(), err)
				case errors.Is(err, bracket.ErrMatchAlreadyDecided):
					httputil.Conflict(w, err.Error(), err)
				default:
					httputil.InternalServerError(w, "Failed to record result", err)
				}
				return
			}

			resp := map[string]any{
				"message": "Result recorded and bracket updated.",
				"match":   matchView(data.Match),
			}
			if data.NextMatch != nil {
				resp["next_match"] = matchView(data.NextMatch)
			}
			httputil.JSON(w, http.StatusOK, resp)
		})

		r.Put("/matches/{id}/schedule", func(w http.ResponseWriter, r *http.Request) {
			matchID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid match ID", err)
				return
			}
			var req struct {
				RingID       int64 `json:"ring_id"`
				RingSequence int64 `json:"ring_sequence"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RingID <= 0 || req.RingSequence <= 0 {
				httputil.BadRequest(w, "ring_id and ring_sequence are required", err)
				return
			}

			match, err := matchService.ScheduleMatch(r.Context(), matchID, req.RingID, req.RingSequence)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Match or ring not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to schedule match", err)
				return
			}
			httputil.JSON(w, http.StatusOK, matchView(match))
		})
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		a, err := adminService.FindOrCreateAdminByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create admin", err)
			return
		}

		sessionManager.Put(r.Context(), "adminID", a.ID.String())
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		sessionManager.Destroy(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// matchView mirrors the bracket listing's field names for single-match
// responses.
func matchView(m *bracket.Match) map[string]any {
	return map[string]any{
		"match_id":      m.ID,
		"round_name":    m.RoundName,
		"status":        m.Status,
		"ring_id":       m.RingID,
		"match_number":  m.MatchNumber,
		"next_match_id": m.NextMatchID,
		"competitor1":   m.Competitor1ID,
		"competitor2":   m.Competitor2ID,
		"winner_id":     m.WinnerID,
	}
}
