// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dairdly/voting/cliparse"
	"github.com/dairdly/voting/middleware"
	"github.com/dairdly/voting/models"
	"github.com/dairdly/voting/registration"
	"github.com/dairdly/voting/session"
)

type RegistrationHandler struct {
	cfg  cliparse.Config
	gate *registration.Gate
}

func NewRegistrationHandler(db *sql.DB, cfg cliparse.Config) *RegistrationHandler {
	return &RegistrationHandler{
		cfg:  cfg,
		gate: registration.NewGate(db, newElectionService(db, cfg)),
	}
}

// CreatePosition handles POST /register/position
func (h *RegistrationHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	values, err := middleware.FormValues(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.gate.CreatePosition(r.Context(), values.Get("name")); err != nil {
		writeError(w, r, err)
		return
	}

	flashAndRedirect(w, r, models.FlashSuccess, "Position has been successfully created", "/list")
}

// CreateCandidate handles POST /register/candidate
func (h *RegistrationHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	values, err := middleware.FormValues(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	level, err := strconv.Atoi(strings.TrimSpace(values.Get("level")))
	if err != nil {
		writeError(w, r, models.Invalid("level", models.ErrInvalid, "Select a valid level"))
		return
	}

	_, err = h.gate.CreateCandidate(r.Context(), values.Get("name"), level, values.Get("position"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	flashAndRedirect(w, r, models.FlashSuccess, "Candidate has been successfully created", "/list")
}

// DeletePosition handles POST /position/{id}/delete
func (h *RegistrationHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	err := h.gate.DeletePosition(r.Context(), r.PathValue("id"))
	if errors.Is(err, models.ErrNotFound) {
		flashAndRedirect(w, r, models.FlashWarning, "Position does not exist", "/list")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	flashAndRedirect(w, r, models.FlashSuccess, "Position has been deleted", "/list")
}

// DeleteCandidate handles POST /candidate/{id}/delete
func (h *RegistrationHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	err := h.gate.DeleteCandidate(r.Context(), r.PathValue("id"))
	if errors.Is(err, models.ErrNotFound) {
		flashAndRedirect(w, r, models.FlashWarning, "Candidate does not exist", "/list")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	flashAndRedirect(w, r, models.FlashSuccess, "Candidate has been deleted", "/list")
}

// List handles GET /list
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	flash := session.PopFlash(w, r)

	listing, err := h.gate.List(r.Context())
	if errors.Is(err, models.ErrElectionNotFound) {
		middleware.JSONResponse(w, http.StatusOK, models.ListResponse{
			Positions: []models.PositionView{},
			Flash:     flashOr(flash, models.FlashWarning, "No Election has been registered"),
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := models.ListResponse{
		Election:  listing.Election,
		Positions: make([]models.PositionView, 0, len(listing.Positions)),
		Flash:     flash,
	}
	for _, p := range listing.Positions {
		resp.Positions = append(resp.Positions, models.ViewOf(p, true))
	}
	for _, c := range listing.Unassigned {
		resp.Unassigned = append(resp.Unassigned, models.CandidateViewOf(c, true))
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

func flashOr(f *models.Flash, level, message string) *models.Flash {
	if f != nil {
		return f
	}
	return &models.Flash{Level: level, Message: message}
}
