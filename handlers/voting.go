// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dairdly/voting/access"
	"github.com/dairdly/voting/ballot"
	"github.com/dairdly/voting/cliparse"
	"github.com/dairdly/voting/election"
	"github.com/dairdly/voting/middleware"
	"github.com/dairdly/voting/models"
	"github.com/dairdly/voting/session"
	"github.com/dairdly/voting/verifier"
)

// StudentVerifier checks student credentials with the campus portal
type StudentVerifier interface {
	Validate(ctx context.Context, username, password string) verifier.Result
}

type VotingHandler struct {
	cfg       cliparse.Config
	elections *election.Service
	engine    *ballot.Engine
	resolver  *access.Resolver
	sessions  *session.Manager
	students  StudentVerifier
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, sessions *session.Manager, students StudentVerifier) *VotingHandler {
	elections := newElectionService(db, cfg)
	return &VotingHandler{
		cfg:       cfg,
		elections: elections,
		engine:    ballot.NewEngine(db, elections, cfg.VoteRequiresActive),
		resolver:  access.NewResolver(db),
		sessions:  sessions,
		students:  students,
	}
}

// RegForm handles GET / and GET /reg
func (h *VotingHandler) RegForm(w http.ResponseWriter, r *http.Request) {
	resp := models.FormResponse{
		Action: "/reg",
		Fields: []string{"username", "password"},
		Flash:  session.PopFlash(w, r),
	}

	status, err := electionStatus(r.Context(), h.elections)
	if err != nil && !errors.Is(err, models.ErrElectionNotFound) {
		writeError(w, r, err)
		return
	}
	resp.Status = status

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Register handles POST /reg
func (h *VotingHandler) Register(w http.ResponseWriter, r *http.Request) {
	values, err := middleware.FormValues(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	username, password := values.Get("username"), values.Get("password")

	if err := access.ValidateCredentials(username, password); err != nil {
		writeError(w, r, err)
		return
	}

	// Students can only sign in while an election is running
	if _, err := h.elections.RequirePhase(r.Context(), models.PhaseActive); err != nil {
		if errors.Is(err, models.ErrElectionNotFound) || errors.Is(err, models.ErrPhase) {
			writeError(w, r, models.Invalid("", models.ErrPhase, "No Election is running"))
			return
		}
		writeError(w, r, err)
		return
	}

	if res := h.students.Validate(r.Context(), username, password); res != verifier.Verified {
		writeError(w, r, models.Invalid("", models.ErrInvalid, "Invalid username and password"))
		return
	}

	voter, err := h.resolver.Voter(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if voter.HasVoted {
		redirect(w, r, "/thanks")
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, r, models.TierVoter, voter.ID); err != nil {
		writeError(w, r, err)
		return
	}

	redirect(w, r, "/vote")
}

// Ballot handles GET /vote
func (h *VotingHandler) Ballot(w http.ResponseWriter, r *http.Request) {
	p := session.FromContext(r.Context())

	voted, err := h.engine.HasVoted(r.Context(), p.VoterID)
	if errors.Is(err, models.ErrAuth) {
		h.sessions.End(r.Context(), w)
		redirect(w, r, access.VoterEntry)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if voted {
		redirect(w, r, "/thanks")
		return
	}

	b, err := h.engine.Ballot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, b)
}

// Vote handles POST /vote
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	p := session.FromContext(r.Context())

	values, err := middleware.FormValues(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := h.engine.Cast(r.Context(), p.VoterID, values)
	if errors.Is(err, models.ErrAuth) {
		h.sessions.End(r.Context(), w)
		redirect(w, r, access.VoterEntry)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The session has served its purpose either way
	if err := h.sessions.EndVoter(r.Context(), w, p.VoterID); err != nil {
		slog.Warn("failed to end voter session", "voter_id", p.VoterID, "error", err)
	}

	slog.Info("ballot submitted", "voter_id", p.VoterID, "outcome", outcome.String())
	redirect(w, r, "/thanks")
}

// Thanks handles GET /thanks
func (h *VotingHandler) Thanks(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Thank you for voting",
		Flash:   session.PopFlash(w, r),
	})
}
