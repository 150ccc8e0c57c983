// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dairdly/voting/access"
	"github.com/dairdly/voting/models"
	"github.com/dairdly/voting/session"
)

type stubLoader struct {
	p   *session.Principal
	err error
}

func (s stubLoader) Load(r *http.Request) (*session.Principal, error) {
	if s.p == nil {
		return &session.Principal{Tier: models.TierNone}, s.err
	}
	return s.p, s.err
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name     string
		cap      access.Capability
		tier     models.Tier
		path     string
		wantCode int
		wantLoc  string
	}{
		{"staff allowed", access.Staff, models.TierStaff, "/list", http.StatusOK, ""},
		{"admin passes staff", access.Staff, models.TierAdmin, "/list", http.StatusOK, ""},
		{"staff denied admin", access.Admin, models.TierStaff, "/result?page=2", http.StatusSeeOther, "/access?next=%2Fresult%3Fpage%3D2"},
		{"anonymous denied staff", access.Staff, models.TierNone, "/list", http.StatusSeeOther, "/access?next=%2Flist"},
		{"voter allowed", access.Voter, models.TierVoter, "/vote", http.StatusOK, ""},
		{"admin is not a voter", access.Voter, models.TierAdmin, "/vote", http.StatusSeeOther, "/reg"},
		{"anonymous denied vote", access.Voter, models.TierNone, "/vote", http.StatusSeeOther, "/reg"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := WithPrincipal(stubLoader{p: &session.Principal{Tier: tc.tier}}, Require(tc.cap, ok))

			req := httptest.NewRequest("GET", tc.path, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("Expected status %d, got %d", tc.wantCode, w.Code)
			}
			if loc := w.Header().Get("Location"); loc != tc.wantLoc {
				t.Errorf("Expected Location %q, got %q", tc.wantLoc, loc)
			}
		})
	}
}

func TestWithPrincipal_LoadErrorIsAnonymous(t *testing.T) {
	var got *session.Principal
	h := WithPrincipal(stubLoader{err: errors.New("db down")}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = session.FromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got == nil || got.Tier != models.TierNone {
		t.Errorf("Expected anonymous principal, got %+v", got)
	}
}
