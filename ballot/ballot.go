// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/dairdly/voting/election"
	"github.com/dairdly/voting/metrics"
	"github.com/dairdly/voting/models"
	"github.com/dairdly/voting/registration"
)

// Outcome of a cast. Both outcomes lead the voter to the confirmation page.
type Outcome int

const (
	Recorded Outcome = iota + 1
	AlreadyVoted
)

func (o Outcome) String() string {
	switch o {
	case Recorded:
		return "recorded"
	case AlreadyVoted:
		return "already_voted"
	default:
		return "unknown"
	}
}

// Engine applies ballots to candidate tallies, at most once per voter
type Engine struct {
	db        *sql.DB
	elections *election.Service

	// RequireActive rejects ballots outside the active phase
	RequireActive bool
}

func NewEngine(db *sql.DB, elections *election.Service, requireActive bool) *Engine {
	return &Engine{db: db, elections: elections, RequireActive: requireActive}
}

// pick is one allow-listed ballot entry
type pick struct {
	positionID string
	position   string
	candidate  string
}

// Cast records the voter's choices, keyed by position name.
// Keys that do not name a position of the current election are ignored.
func (e *Engine) Cast(ctx context.Context, voterID string, choices url.Values) (Outcome, error) {
	hasVoted, err := e.HasVoted(ctx, voterID)
	if err != nil {
		return 0, err
	}
	if hasVoted {
		metrics.BallotsCast.WithLabelValues(AlreadyVoted.String()).Inc()
		slog.Info("repeat ballot ignored", "voter_id", voterID)
		return AlreadyVoted, nil
	}

	var current *models.Election
	if e.RequireActive {
		current, err = e.elections.RequirePhase(ctx, models.PhaseActive)
	} else {
		current, err = e.elections.Current(ctx)
	}
	if err != nil {
		return 0, err
	}

	picks, err := e.match(ctx, current.ID, choices)
	if err != nil {
		return 0, err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	outcome, err := apply(ctx, tx, voterID, picks)
	if err != nil {
		return 0, err
	}
	if outcome == Recorded {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit ballot: %w", err)
		}
	}

	metrics.BallotsCast.WithLabelValues(outcome.String()).Inc()
	slog.Info("ballot cast", "voter_id", voterID, "outcome", outcome.String(), "selections", len(picks))
	return outcome, nil
}

// HasVoted reports whether the voter has cast a ballot. Unknown voters are ErrAuth.
func (e *Engine) HasVoted(ctx context.Context, voterID string) (bool, error) {
	var hasVoted bool
	err := e.db.QueryRowContext(ctx, `
		SELECT has_voted FROM voters WHERE id = $1
	`, voterID).Scan(&hasVoted)
	if err == sql.ErrNoRows {
		return false, models.ErrAuth
	}
	if err != nil {
		return false, fmt.Errorf("failed to query voter: %w", err)
	}
	return hasVoted, nil
}

// match intersects the submitted keys with the position names of the election.
func (e *Engine) match(ctx context.Context, electionID string, choices url.Values) ([]pick, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT id, name FROM positions WHERE election_id = $1 ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	submitted := make(map[string]string, len(choices))
	for key, values := range choices {
		if len(values) == 0 {
			continue
		}
		submitted[registration.NormalizePositionName(key)] = values[0]
	}

	var picks []pick
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		choice, ok := submitted[name]
		if !ok {
			continue
		}
		candidate := registration.NormalizeCandidateName(choice)
		if candidate == "" {
			continue
		}
		picks = append(picks, pick{positionID: id, position: name, candidate: candidate})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return picks, nil
}

// apply marks the voter as having voted and increments each picked candidate.
// The has_voted flip is the first statement: when it matches no row the
// transaction changes nothing and AlreadyVoted is returned.
func apply(ctx context.Context, tx *sql.Tx, voterID string, picks []pick) (Outcome, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE voters SET has_voted = TRUE WHERE id = $1 AND has_voted = FALSE
	`, voterID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark voter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return AlreadyVoted, nil
	}

	for _, p := range picks {
		res, err := tx.ExecContext(ctx, `
			UPDATE candidates SET vote_count = vote_count + 1
			WHERE name = $1
			  AND id IN (SELECT candidate_id FROM position_candidates WHERE position_id = $2)
		`, p.candidate, p.positionID)
		if err != nil {
			return 0, fmt.Errorf("failed to increment vote count: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			slog.Warn("ballot choice matched no candidate", "position", p.position, "candidate", p.candidate)
		}
	}

	return Recorded, nil
}

// Results returns the current election's positions with candidates ordered by
// vote count, then level, both ascending.
func (e *Engine) Results(ctx context.Context) ([]models.Position, error) {
	current, err := e.elections.Current(ctx)
	if err != nil {
		return nil, err
	}
	return registration.LoadPositions(ctx, e.db, current.ID, "c.vote_count, c.level, c.name")
}

// Ballot returns the positions a voter chooses from, without tallies
func (e *Engine) Ballot(ctx context.Context) (*models.BallotResponse, error) {
	current, err := e.elections.Current(ctx)
	if err != nil {
		return nil, err
	}
	positions, err := registration.LoadPositions(ctx, e.db, current.ID, "c.name")
	if err != nil {
		return nil, err
	}

	resp := &models.BallotResponse{Election: current, Positions: make([]models.PositionView, 0, len(positions))}
	for _, p := range positions {
		resp.Positions = append(resp.Positions, models.ViewOf(p, false))
	}
	return resp, nil
}

// Page returns page n (1-based) of results, one position per page.
// n below 1 yields the first page; n past the end yields the last.
func Page(results []models.Position, n int) models.ResultPageResponse {
	total := len(results)
	if total == 0 {
		return models.ResultPageResponse{Page: 1}
	}
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}

	p := results[n-1]
	return models.ResultPageResponse{
		Page:        n,
		NumPages:    total,
		HasNext:     n < total,
		HasPrevious: n > 1,
		Position:    &p,
	}
}
