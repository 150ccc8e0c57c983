// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/dairdly/voting/cliparse"
	"github.com/dairdly/voting/election"
	"github.com/dairdly/voting/middleware"
	"github.com/dairdly/voting/models"
	"github.com/dairdly/voting/session"
)

type ElectionHandler struct {
	cfg       cliparse.Config
	elections *election.Service
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{cfg: cfg, elections: newElectionService(db, cfg)}
}

// electionStatus describes the current election for display.
// Opens and Closes are relative ("in 3 hours", "2 days ago").
func electionStatus(ctx context.Context, elections *election.Service) (*models.ElectionStatusResponse, error) {
	e, phase, err := elections.CurrentPhase(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ElectionStatusResponse{
		Election: e,
		Phase:    phase,
		Opens:    humanize.Time(e.StartAt),
		Closes:   humanize.Time(e.EndAt),
	}, nil
}

// Manage handles GET /manage
func (h *ElectionHandler) Manage(w http.ResponseWriter, r *http.Request) {
	flash := session.PopFlash(w, r)

	status, err := electionStatus(r.Context(), h.elections)
	if errors.Is(err, models.ErrElectionNotFound) {
		middleware.JSONResponse(w, http.StatusOK, models.ElectionStatusResponse{
			Flash: flashOr(flash, models.FlashWarning, "No Election has been registered"),
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	status.Flash = flash
	middleware.JSONResponse(w, http.StatusOK, status)
}

// CreateElection handles POST /manage
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	values, err := middleware.FormValues(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e, err := h.elections.Create(r.Context(), values.Get("name"), values.Get("duration"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	flashAndRedirect(w, r, models.FlashSuccess, fmt.Sprintf("%s has been scheduled", e.Name), "/manage")
}

// Cancel handles POST /del
func (h *ElectionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	summary, err := h.elections.Cancel(r.Context())
	if errors.Is(err, models.ErrElectionNotFound) {
		flashAndRedirect(w, r, models.FlashWarning, "No Election has been registered", "/manage")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := fmt.Sprintf("Election cancelled: %s and %s removed",
		english.Plural(int(summary.Candidates), "candidate", ""),
		english.Plural(int(summary.Voters), "voter", ""))
	flashAndRedirect(w, r, models.FlashSuccess, msg, "/manage")
}
