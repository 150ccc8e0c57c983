// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/dairdly/voting/access"
	"github.com/dairdly/voting/cliparse"
	"github.com/dairdly/voting/handlers"
	"github.com/dairdly/voting/metrics"
	"github.com/dairdly/voting/middleware"
	"github.com/dairdly/voting/session"
	"github.com/dairdly/voting/verifier"
)

// Route declares one endpoint. Capability zero means public.
type Route struct {
	Pattern     string
	Capability  access.Capability
	RateLimited bool
	Handler     http.HandlerFunc
}

// Options overrides collaborators, mainly for tests
type Options struct {
	Verifier handlers.StudentVerifier
}

func NewRouter(db *sql.DB, cfg cliparse.Config) http.Handler {
	return NewRouterWithOptions(db, cfg, Options{})
}

func NewRouterWithOptions(db *sql.DB, cfg cliparse.Config, opts Options) http.Handler {
	metrics.Init()

	sessions := session.NewManager(session.NewStore(db), cfg.SessionSecret, cfg.SessionTTL)
	sessions.Secure = cfg.SecureCookies
	students := opts.Verifier
	if students == nil {
		students = verifier.NewClient(cfg.VerifierURL, cfg.VerifierAccountURL)
	}

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(db, cfg, sessions, students)
	registrationHandler := handlers.NewRegistrationHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	electionHandler := handlers.NewElectionHandler(db, cfg)
	accessHandler := handlers.NewAccessHandler(db, cfg, sessions)

	routes := []Route{
		// Voters
		{Pattern: "GET /{$}", Handler: votingHandler.RegForm},
		{Pattern: "GET /reg", Handler: votingHandler.RegForm},
		{Pattern: "POST /reg", RateLimited: true, Handler: votingHandler.Register},
		{Pattern: "GET /vote", Capability: access.Voter, Handler: votingHandler.Ballot},
		{Pattern: "POST /vote", Capability: access.Voter, Handler: votingHandler.Vote},
		{Pattern: "GET /thanks", Handler: votingHandler.Thanks},

		// Registration (staff)
		{Pattern: "POST /register/position", Capability: access.Staff, Handler: registrationHandler.CreatePosition},
		{Pattern: "POST /register/candidate", Capability: access.Staff, Handler: registrationHandler.CreateCandidate},
		{Pattern: "POST /position/{id}/delete", Capability: access.Staff, Handler: registrationHandler.DeletePosition},
		{Pattern: "POST /candidate/{id}/delete", Capability: access.Staff, Handler: registrationHandler.DeleteCandidate},
		{Pattern: "GET /list", Capability: access.Staff, Handler: registrationHandler.List},
		{Pattern: "GET /vlist", Handler: resultsHandler.PublicList},

		// Access codes
		{Pattern: "GET /access", Handler: accessHandler.AccessForm},
		{Pattern: "POST /access", RateLimited: true, Handler: accessHandler.Access},
		{Pattern: "POST /logout", Handler: accessHandler.Logout},

		// Election management (admin)
		{Pattern: "GET /manage", Capability: access.Admin, Handler: electionHandler.Manage},
		{Pattern: "POST /manage", Capability: access.Admin, Handler: electionHandler.CreateElection},
		{Pattern: "POST /del", Capability: access.Admin, Handler: electionHandler.Cancel},
		{Pattern: "GET /result", Capability: access.Admin, Handler: resultsHandler.GetResults},
		{Pattern: "POST /staff", Capability: access.Admin, Handler: accessHandler.ChangeStaffCode},
		{Pattern: "POST /admin", Capability: access.Admin, Handler: accessHandler.ChangeAdminCode},
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	limiter.TrustedProxies = cfg.TrustedProxies
	for _, route := range routes {
		mux.Handle(route.Pattern, build(route, limiter))
	}

	return middleware.CORS(middleware.WithPrincipal(sessions, mux))
}

// build wraps a route handler, outermost first: metrics, logging, rate limit, capability.
func build(route Route, limiter *middleware.RateLimiter) http.Handler {
	var h http.Handler = route.Handler
	if route.Capability != 0 {
		h = middleware.Require(route.Capability, h)
	}
	if route.RateLimited {
		h = limiter.Wrap(h)
	}
	h = middleware.WithLogging(h.ServeHTTP)
	return metrics.Instrument(route.Pattern, h)
}
