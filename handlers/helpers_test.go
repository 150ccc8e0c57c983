// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dairdly/voting/cliparse"
	"github.com/dairdly/voting/models"
	"github.com/dairdly/voting/session"
	"github.com/dairdly/voting/testutil"
	"github.com/dairdly/voting/verifier"
)

// stubVerifier answers every credential check with result
type stubVerifier struct {
	mu     sync.Mutex
	result verifier.Result
	calls  int
}

func (s *stubVerifier) Validate(ctx context.Context, username, password string) verifier.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result
}

func newTestSessions(db *sql.DB, cfg cliparse.Config) *session.Manager {
	return session.NewManager(session.NewStore(db), cfg.SessionSecret, cfg.SessionTTL)
}

// as attaches a principal to req, the way the session middleware would
func as(req *http.Request, tier models.Tier, voterID string) *http.Request {
	p := &session.Principal{Tier: tier, VoterID: voterID}
	return req.WithContext(session.WithPrincipal(req.Context(), p))
}

// flashOf returns the flash message queued by a response
func flashOf(t *testing.T, w *httptest.ResponseRecorder) *models.Flash {
	t.Helper()
	req := testutil.WithCookies(httptest.NewRequest("GET", "/", nil), w)
	return session.PopFlash(httptest.NewRecorder(), req)
}

func assertFlash(t *testing.T, w *httptest.ResponseRecorder, level, message string) {
	t.Helper()
	f := flashOf(t, w)
	if f == nil {
		t.Fatalf("Expected flash %q, got none", message)
	}
	if f.Level != level || f.Message != message {
		t.Errorf("Expected flash %s %q, got %s %q", level, message, f.Level, f.Message)
	}
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

// testHarness wires every handler to one fresh database
type testHarness struct {
	db           *sql.DB
	cfg          cliparse.Config
	sessions     *session.Manager
	students     *stubVerifier
	voting       *VotingHandler
	registration *RegistrationHandler
	results      *ResultsHandler
	elections    *ElectionHandler
	access       *AccessHandler
}

func newHarness(t *testing.T, result verifier.Result) *testHarness {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	sessions := newTestSessions(db, cfg)
	students := &stubVerifier{result: result}

	return &testHarness{
		db:           db,
		cfg:          cfg,
		sessions:     sessions,
		students:     students,
		voting:       NewVotingHandler(db, cfg, sessions, students),
		registration: NewRegistrationHandler(db, cfg),
		results:      NewResultsHandler(db, cfg),
		elections:    NewElectionHandler(db, cfg),
		access:       NewAccessHandler(db, cfg, sessions),
	}
}
