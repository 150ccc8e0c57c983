// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dairdly/voting/auth"
	"github.com/dairdly/voting/cliparse"
	"github.com/dairdly/voting/db"
	"github.com/dairdly/voting/ids"
	"github.com/dairdly/voting/models"
)

// SetupTestDB creates a fresh SQLite database in a temp dir with the full schema.
// The database is closed when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(db.TypeSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               8000,
		DatabaseURL:        "file::memory:",
		DatabaseType:       db.TypeSQLite,
		SessionSecret:      "test-session-secret",
		StaffCode:          "staff",
		AdminCode:          "admin",
		VerifierURL:        "http://verifier.invalid/login.php",
		VerifierAccountURL: "http://verifier.invalid/my-account-student.php",
		Timezone:           "UTC",
		VoteRequiresActive: true,
		SessionTTL:         2 * time.Hour,
		RateLimit:          1000,
	}
}

// CreateTestElection inserts an election with the given window and returns its ID
func CreateTestElection(t *testing.T, db *sql.DB, name string, start, end time.Time) string {
	t.Helper()

	id := ids.New()
	_, err := db.Exec(`
		INSERT INTO elections (id, name, start_at, end_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, start.UTC(), end.UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return id
}

// ScheduledElection creates an election starting in one hour
func ScheduledElection(t *testing.T, db *sql.DB) string {
	t.Helper()
	now := time.Now()
	return CreateTestElection(t, db, "SUG ELECTION", now.Add(time.Hour), now.Add(3*time.Hour))
}

// ActiveElection creates an election that started an hour ago
func ActiveElection(t *testing.T, db *sql.DB) string {
	t.Helper()
	now := time.Now()
	return CreateTestElection(t, db, "SUG ELECTION", now.Add(-time.Hour), now.Add(time.Hour))
}

// EndedElection creates an election that is already over
func EndedElection(t *testing.T, db *sql.DB) string {
	t.Helper()
	now := time.Now()
	return CreateTestElection(t, db, "SUG ELECTION", now.Add(-3*time.Hour), now.Add(-time.Hour))
}

// AddTestPosition inserts a position and returns its ID
func AddTestPosition(t *testing.T, db *sql.DB, electionID, name string) string {
	t.Helper()

	id := ids.New()
	_, err := db.Exec(`
		INSERT INTO positions (id, name, election_id)
		VALUES ($1, $2, $3)
	`, id, strings.ToUpper(name), electionID)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return id
}

// AddTestCandidate inserts a candidate bound to a position and returns its ID
func AddTestCandidate(t *testing.T, db *sql.DB, electionID, positionID, name string, level int) string {
	t.Helper()

	id := ids.New()
	_, err := db.Exec(`
		INSERT INTO candidates (id, name, level, vote_count, position_id, election_id)
		VALUES ($1, $2, $3, 0, $4, $5)
	`, id, name, level, positionID, electionID)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO position_candidates (position_id, candidate_id) VALUES ($1, $2)
	`, positionID, id)
	if err != nil {
		t.Fatalf("Failed to link test candidate: %v", err)
	}

	return id
}

// CreateTestVoter inserts a voter and returns its ID
func CreateTestVoter(t *testing.T, db *sql.DB, username string, hasVoted bool) string {
	t.Helper()

	id := ids.New()
	_, err := db.Exec(`
		INSERT INTO voters (id, external_username, has_voted, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, username, hasVoted, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return id
}

// CreateTestPrincipal stores the hash of code for role ("staff" or "admin")
func CreateTestPrincipal(t *testing.T, db *sql.DB, role, code string) {
	t.Helper()

	hash, err := auth.HashCode(code)
	if err != nil {
		t.Fatalf("Failed to hash code: %v", err)
	}
	_, err = db.Exec(`
		INSERT INTO access_principals (role, code_hash, updated_at) VALUES ($1, $2, $3)
	`, role, hash, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test principal: %v", err)
	}
}

// VoteCount returns the stored vote count of a candidate
func VoteCount(t *testing.T, db *sql.DB, candidateID string) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT vote_count FROM candidates WHERE id = $1`, candidateID).Scan(&n); err != nil {
		t.Fatalf("Failed to query vote count: %v", err)
	}
	return n
}

// HasVoted returns the stored has_voted flag of a voter
func HasVoted(t *testing.T, db *sql.DB, voterID string) bool {
	t.Helper()

	var voted bool
	if err := db.QueryRow(`SELECT has_voted FROM voters WHERE id = $1`, voterID).Scan(&voted); err != nil {
		t.Fatalf("Failed to query has_voted: %v", err)
	}
	return voted
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request with a JSON body
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates an HTTP test request with a urlencoded form body
func MakeFormRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// WithCookies copies the cookies set by a previous response onto req
func WithCookies(req *http.Request, w *httptest.ResponseRecorder) *http.Request {
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(c)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 303 to location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	AssertStatus(t, w, http.StatusSeeOther)
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorField decodes an error response and checks the offending field
func AssertErrorField(t *testing.T, w *httptest.ResponseRecorder, field string) {
	t.Helper()
	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	if resp.Field != field {
		t.Errorf("Expected error on field %q, got %q (%s)", field, resp.Field, resp.Message)
	}
}
