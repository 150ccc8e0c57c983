// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dairdly/voting/ids"
	"github.com/dairdly/voting/models"
)

// DurationLayout is the date-time layout of each endpoint in a duration string
const DurationLayout = "2006-01-02 15:04"

type Service struct {
	db  *sql.DB
	loc *time.Location

	// Now is the clock every phase decision is made against
	Now func() time.Time
}

func NewService(db *sql.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, loc: loc, Now: time.Now}
}

// PhaseOf derives the lifecycle phase of e at now.
// Scheduled before StartAt, Active in [StartAt, EndAt), Ended from EndAt on.
func PhaseOf(e *models.Election, now time.Time) models.Phase {
	switch {
	case now.Before(e.StartAt):
		return models.PhaseScheduled
	case now.Before(e.EndAt):
		return models.PhaseActive
	default:
		return models.PhaseEnded
	}
}

// Current returns the most recently created election
func (s *Service) Current(ctx context.Context) (*models.Election, error) {
	var e models.Election
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, start_at, end_at, started, ended, created_at
		FROM elections
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&e.ID, &e.Name, &e.StartAt, &e.EndAt, &e.Started, &e.Ended, &e.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, models.ErrElectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query current election: %w", err)
	}

	e.StartAt = e.StartAt.UTC()
	e.EndAt = e.EndAt.UTC()
	e.CreatedAt = e.CreatedAt.UTC()

	s.refreshHints(ctx, &e)
	return &e, nil
}

// refreshHints brings the cached started/ended columns in line with the clock.
// Failures are logged only: the hints are never read for decisions.
func (s *Service) refreshHints(ctx context.Context, e *models.Election) {
	phase := PhaseOf(e, s.Now())
	started := phase != models.PhaseScheduled
	ended := phase == models.PhaseEnded
	if e.Started == started && e.Ended == ended {
		return
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE elections SET started = $1, ended = $2 WHERE id = $3
	`, started, ended, e.ID)
	if err != nil {
		slog.Warn("failed to refresh election hints", "election_id", e.ID, "error", err)
		return
	}
	e.Started, e.Ended = started, ended
}

// CurrentPhase returns the current election together with its phase
func (s *Service) CurrentPhase(ctx context.Context) (*models.Election, models.Phase, error) {
	e, err := s.Current(ctx)
	if err != nil {
		return nil, "", err
	}
	return e, PhaseOf(e, s.Now()), nil
}

// RequirePhase returns the current election if it is in phase want.
func (s *Service) RequirePhase(ctx context.Context, want models.Phase) (*models.Election, error) {
	e, phase, err := s.CurrentPhase(ctx)
	if err != nil {
		return nil, err
	}
	if phase != want {
		return nil, models.Invalid("", models.ErrPhase, phaseMessage(want, phase))
	}
	return e, nil
}

func phaseMessage(want, got models.Phase) string {
	switch want {
	case models.PhaseScheduled:
		return "Election has already started; registration is closed"
	case models.PhaseActive:
		if got == models.PhaseScheduled {
			return "Election has not started yet"
		}
		return "Election has ended"
	default:
		return fmt.Sprintf("Election is %s, not %s", got, want)
	}
}

// ParseWindow parses "start-date start-time TO end-date end-time" in loc.
// The third token is a separator and is not inspected.
func ParseWindow(duration string, loc *time.Location) (time.Time, time.Time, error) {
	parts := strings.Fields(duration)
	if len(parts) != 5 {
		return time.Time{}, time.Time{}, models.Invalid("duration", models.ErrInvalid, "Select two dates for start and end")
	}

	start, err := time.ParseInLocation(DurationLayout, parts[0]+" "+parts[1], loc)
	if err != nil {
		return time.Time{}, time.Time{}, models.Invalid("duration", models.ErrInvalid, "Invalid start date")
	}
	end, err := time.ParseInLocation(DurationLayout, parts[3]+" "+parts[4], loc)
	if err != nil {
		return time.Time{}, time.Time{}, models.Invalid("duration", models.ErrInvalid, "Invalid end date")
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, models.Invalid("duration", models.ErrInvalid, "End must be after start")
	}

	return start.UTC(), end.UTC(), nil
}

// Create registers a new election, which becomes the current one
func (s *Service) Create(ctx context.Context, name, duration string) (*models.Election, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return nil, models.Invalid("name", models.ErrInvalid, "name is required")
	}

	start, end, err := ParseWindow(duration, s.loc)
	if err != nil {
		return nil, err
	}

	e := &models.Election{
		ID:        ids.New(),
		Name:      name,
		StartAt:   start,
		EndAt:     end,
		CreatedAt: s.Now().UTC().Truncate(time.Second),
	}
	phase := PhaseOf(e, s.Now())
	e.Started = phase != models.PhaseScheduled
	e.Ended = phase == models.PhaseEnded

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO elections (id, name, start_at, end_at, started, ended, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Name, e.StartAt, e.EndAt, e.Started, e.Ended, e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert election: %w", err)
	}

	slog.Info("election created", "election_id", e.ID, "name", e.Name, "start", e.StartAt, "end", e.EndAt)
	return e, nil
}

// CancelSummary reports how many rows the purge removed
type CancelSummary struct {
	Elections  int64
	Positions  int64
	Candidates int64
	Voters     int64
}

// Cancel purges every election with its positions and candidates, all voters
// and their sessions. Staff and admin principals and sessions are kept.
func (s *Service) Cancel(ctx context.Context) (CancelSummary, error) {
	var summary CancelSummary

	if _, err := s.Current(ctx); err != nil {
		return summary, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		query string
		count *int64
	}{
		{`DELETE FROM sessions WHERE role = 'voter'`, nil},
		{`DELETE FROM position_candidates`, nil},
		{`DELETE FROM candidates`, &summary.Candidates},
		{`DELETE FROM positions`, &summary.Positions},
		{`DELETE FROM voters`, &summary.Voters},
		{`DELETE FROM elections`, &summary.Elections},
	}
	for _, step := range steps {
		res, err := tx.ExecContext(ctx, step.query)
		if err != nil {
			return CancelSummary{}, fmt.Errorf("failed to purge election data: %w", err)
		}
		if step.count != nil {
			n, err := res.RowsAffected()
			if err != nil {
				return CancelSummary{}, fmt.Errorf("failed to count purged rows: %w", err)
			}
			*step.count = n
		}
	}

	if err := tx.Commit(); err != nil {
		return CancelSummary{}, fmt.Errorf("failed to commit purge: %w", err)
	}

	slog.Info("election cancelled",
		"elections", summary.Elections,
		"positions", summary.Positions,
		"candidates", summary.Candidates,
		"voters", summary.Voters,
	)
	return summary, nil
}
