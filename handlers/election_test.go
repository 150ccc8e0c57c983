// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dairdly/voting/election"
	"github.com/dairdly/voting/models"
	"github.com/dairdly/voting/testutil"
	"github.com/dairdly/voting/verifier"
)

func window(start, end time.Time) string {
	return start.UTC().Format(election.DurationLayout) + " TO " + end.UTC().Format(election.DurationLayout)
}

func TestManage(t *testing.T) {
	h := newHarness(t, verifier.Verified)

	w := httptest.NewRecorder()
	h.elections.Manage(w, httptest.NewRequest("GET", "/manage", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ElectionStatusResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Election != nil {
		t.Errorf("Expected no election, got %+v", resp.Election)
	}
	if resp.Flash == nil || resp.Flash.Message != "No Election has been registered" {
		t.Errorf("Expected no-election flash, got %+v", resp.Flash)
	}

	testutil.ScheduledElection(t, h.db)

	w = httptest.NewRecorder()
	h.elections.Manage(w, httptest.NewRequest("GET", "/manage", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	resp = models.ElectionStatusResponse{}
	testutil.AssertJSON(t, w, &resp)
	if resp.Election == nil || resp.Phase != models.PhaseScheduled {
		t.Errorf("Expected scheduled election, got %+v", resp)
	}
}

func TestCreateElection(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name           string
		form           url.Values
		expectedStatus int
		expectedField  string
	}{
		{
			name:           "valid window",
			form:           url.Values{"name": {"sug election"}, "duration": {window(now.Add(24*time.Hour), now.Add(30*time.Hour))}},
			expectedStatus: http.StatusSeeOther,
		},
		{
			name:           "missing name",
			form:           url.Values{"duration": {window(now.Add(24*time.Hour), now.Add(30*time.Hour))}},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "name",
		},
		{
			name:           "single date",
			form:           url.Values{"name": {"SUG"}, "duration": {"2030-01-01 08:00"}},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "duration",
		},
		{
			name:           "unparseable date",
			form:           url.Values{"name": {"SUG"}, "duration": {"tomorrow 08:00 TO 2030-01-01 18:00"}},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "duration",
		},
		{
			name:           "end before start",
			form:           url.Values{"name": {"SUG"}, "duration": {window(now.Add(30*time.Hour), now.Add(24*time.Hour))}},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, verifier.Verified)

			w := httptest.NewRecorder()
			h.elections.CreateElection(w, testutil.MakeFormRequest("POST", "/manage", tt.form))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedField != "" {
				testutil.AssertErrorField(t, w, tt.expectedField)
				if n := testutil.CountRows(t, h.db, "elections"); n != 0 {
					t.Errorf("Expected no election, got %d", n)
				}
				return
			}

			testutil.AssertRedirect(t, w, "/manage")
			assertFlash(t, w, models.FlashSuccess, "SUG ELECTION has been scheduled")
		})
	}
}

func TestCreateElectionBecomesCurrent(t *testing.T) {
	h := newHarness(t, verifier.Verified)
	testutil.EndedElection(t, h.db)

	now := time.Now()
	form := url.Values{"name": {"Rerun"}, "duration": {window(now.Add(time.Hour), now.Add(2*time.Hour))}}
	w := httptest.NewRecorder()
	h.elections.CreateElection(w, testutil.MakeFormRequest("POST", "/manage", form))
	testutil.AssertRedirect(t, w, "/manage")

	w = httptest.NewRecorder()
	h.elections.Manage(w, httptest.NewRequest("GET", "/manage", nil))

	var resp models.ElectionStatusResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Election == nil || resp.Election.Name != "RERUN" {
		t.Fatalf("Expected RERUN to be current, got %+v", resp.Election)
	}
	if resp.Phase != models.PhaseScheduled {
		t.Errorf("Expected scheduled phase, got %s", resp.Phase)
	}
}

func TestCancel(t *testing.T) {
	h := newHarness(t, verifier.Verified)

	// Nothing to cancel
	w := httptest.NewRecorder()
	h.elections.Cancel(w, testutil.MakeFormRequest("POST", "/del", nil))
	testutil.AssertRedirect(t, w, "/manage")
	assertFlash(t, w, models.FlashWarning, "No Election has been registered")

	electionID := testutil.ActiveElection(t, h.db)
	positionID := testutil.AddTestPosition(t, h.db, electionID, "President")
	testutil.AddTestCandidate(t, h.db, electionID, positionID, "Ada Obi", 300)
	testutil.AddTestCandidate(t, h.db, electionID, positionID, "Bayo Ade", 400)
	voterID := testutil.CreateTestVoter(t, h.db, "u2020001", true)
	testutil.CreateTestPrincipal(t, h.db, "staff", "staff")
	if _, err := h.sessions.Store().Create(context.Background(), models.RoleVoter, &voterID, time.Hour); err != nil {
		t.Fatalf("Failed to create voter session: %v", err)
	}
	if _, err := h.sessions.Store().Create(context.Background(), models.RoleAdmin, nil, time.Hour); err != nil {
		t.Fatalf("Failed to create admin session: %v", err)
	}

	w = httptest.NewRecorder()
	h.elections.Cancel(w, testutil.MakeFormRequest("POST", "/del", nil))
	testutil.AssertRedirect(t, w, "/manage")
	assertFlash(t, w, models.FlashSuccess, "Election cancelled: 2 candidates and 1 voter removed")

	for _, table := range []string{"elections", "positions", "candidates", "position_candidates", "voters"} {
		if n := testutil.CountRows(t, h.db, table); n != 0 {
			t.Errorf("Expected %s to be empty, got %d rows", table, n)
		}
	}
	if n := testutil.CountRows(t, h.db, "access_principals"); n != 1 {
		t.Errorf("Expected access codes to survive, got %d", n)
	}
	if n := testutil.CountRows(t, h.db, "sessions"); n != 1 {
		t.Errorf("Expected only the admin session to survive, got %d", n)
	}
}
