// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dairdly/voting/cliparse"
	"github.com/dairdly/voting/election"
	"github.com/dairdly/voting/middleware"
	"github.com/dairdly/voting/models"
	"github.com/dairdly/voting/session"
)

// writeError translates a service error into a JSON error response.
// ErrAuth is not handled here: callers redirect to an entry point instead.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError

	switch {
	case errors.Is(err, models.ErrElectionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "No Election has been registered")
	case errors.Is(err, models.ErrNotFound):
		field := ""
		if errors.As(err, &ve) {
			field = ve.Field
		}
		middleware.FieldErrorResponse(w, http.StatusNotFound, field, err.Error())
	case errors.As(err, &ve):
		status := http.StatusBadRequest
		if errors.Is(err, models.ErrExists) || errors.Is(err, models.ErrPhase) {
			status = http.StatusConflict
		}
		middleware.FieldErrorResponse(w, status, ve.Field, ve.Error())
	case errors.Is(err, middleware.ErrBadBody):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// redirect sends a 303 so that a POST is followed by a GET
func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// flashAndRedirect queues a flash message for the next page and redirects there
func flashAndRedirect(w http.ResponseWriter, r *http.Request, level, message, location string) {
	session.SetFlash(w, level, message)
	redirect(w, r, location)
}

func newElectionService(db *sql.DB, cfg cliparse.Config) *election.Service {
	loc, err := cfg.Location()
	if err != nil {
		slog.Warn("falling back to UTC", "error", err)
		loc = time.UTC
	}
	return election.NewService(db, loc)
}
