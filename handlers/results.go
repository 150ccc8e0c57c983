// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/dairdly/voting/ballot"
	"github.com/dairdly/voting/cliparse"
	"github.com/dairdly/voting/middleware"
)

type ResultsHandler struct {
	cfg    cliparse.Config
	engine *ballot.Engine
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	elections := newElectionService(db, cfg)
	return &ResultsHandler{
		cfg:    cfg,
		engine: ballot.NewEngine(db, elections, cfg.VoteRequiresActive),
	}
}

// GetResults handles GET /result?page=N
// A page that is not a number is page 1; one past the end is the last page.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	results, err := h.engine.Results(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ballot.Page(results, page))
}

// PublicList handles GET /vlist
func (h *ResultsHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	b, err := h.engine.Ballot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, b)
}
