// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dairdly/voting/db"
	"github.com/dairdly/voting/election"
	"github.com/dairdly/voting/ids"
	"github.com/dairdly/voting/models"
)

// Gate registers positions and candidates while the current election is scheduled
type Gate struct {
	db        *sql.DB
	elections *election.Service
}

func NewGate(db *sql.DB, elections *election.Service) *Gate {
	return &Gate{db: db, elections: elections}
}

// NormalizePositionName upper-cases a position name
func NormalizePositionName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeCandidateName title-cases each whitespace-separated token and
// joins them with single spaces: "saMuel  UCHe" → "Samuel Uche".
func NormalizeCandidateName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// CreatePosition registers a position in the current election
func (g *Gate) CreatePosition(ctx context.Context, name string) (*models.Position, error) {
	name = NormalizePositionName(name)
	if name == "" {
		return nil, models.Invalid("name", models.ErrInvalid, "name is required")
	}

	e, err := g.elections.RequirePhase(ctx, models.PhaseScheduled)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = g.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM positions WHERE name = $1)
	`, name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check position name: %w", err)
	}
	if exists {
		return nil, models.Invalid("name", models.ErrExists, "Position exists")
	}

	p := &models.Position{ID: ids.New(), Name: name, ElectionID: e.ID, Candidates: []models.Candidate{}}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO positions (id, name, election_id)
		VALUES ($1, $2, $3)
	`, p.ID, p.Name, p.ElectionID)
	if db.IsUniqueViolation(err) {
		return nil, models.Invalid("name", models.ErrExists, "Position exists")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert position: %w", err)
	}

	slog.Info("position created", "position_id", p.ID, "name", p.Name, "election_id", e.ID)
	return p, nil
}

// CreateCandidate registers a candidate and adds it to the position's membership set
func (g *Gate) CreateCandidate(ctx context.Context, name string, level int, positionID string) (*models.Candidate, error) {
	name = NormalizeCandidateName(name)
	if name == "" {
		return nil, models.Invalid("name", models.ErrInvalid, "name is required")
	}

	e, err := g.elections.RequirePhase(ctx, models.PhaseScheduled)
	if err != nil {
		return nil, err
	}

	if !models.ValidLevel(level) {
		return nil, models.Invalid("level", models.ErrInvalid, "Select a valid level")
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var found bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM positions WHERE id = $1 AND election_id = $2)
	`, positionID, e.ID).Scan(&found)
	if err != nil {
		return nil, fmt.Errorf("failed to query position: %w", err)
	}
	if !found {
		return nil, models.Invalid("position", models.ErrNotFound, "Select a valid position")
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM candidates WHERE name = $1)
	`, name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check candidate name: %w", err)
	}
	if exists {
		return nil, models.Invalid("name", models.ErrExists, "Candidate exists")
	}

	c := &models.Candidate{
		ID:         ids.New(),
		Name:       name,
		Level:      level,
		PositionID: &positionID,
		ElectionID: e.ID,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO candidates (id, name, level, vote_count, position_id, election_id)
		VALUES ($1, $2, $3, 0, $4, $5)
	`, c.ID, c.Name, c.Level, positionID, c.ElectionID)
	if db.IsUniqueViolation(err) {
		return nil, models.Invalid("name", models.ErrExists, "Candidate exists")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert candidate: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO position_candidates (position_id, candidate_id)
		VALUES ($1, $2)
	`, positionID, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add candidate to position: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit candidate: %w", err)
	}

	slog.Info("candidate created", "candidate_id", c.ID, "name", c.Name, "position_id", positionID)
	return c, nil
}

// DeletePosition removes a position. Its candidates survive with their
// position reference cleared.
func (g *Gate) DeletePosition(ctx context.Context, id string) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE candidates SET position_id = NULL WHERE position_id = $1`, id); err != nil {
		return fmt.Errorf("failed to detach candidates: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM position_candidates WHERE position_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear position members: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return models.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit position delete: %w", err)
	}

	slog.Info("position deleted", "position_id", id)
	return nil
}

// DeleteCandidate removes a candidate and its membership rows
func (g *Gate) DeleteCandidate(ctx context.Context, id string) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM position_candidates WHERE candidate_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear candidate membership: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return models.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit candidate delete: %w", err)
	}

	slog.Info("candidate deleted", "candidate_id", id)
	return nil
}

// Listing is the registration view of the current election
type Listing struct {
	Election  *models.Election
	Positions []models.Position
	// Unassigned holds candidates whose position was deleted
	Unassigned []models.Candidate
}

// List returns the positions of the current election with their member candidates
func (g *Gate) List(ctx context.Context) (*Listing, error) {
	e, err := g.elections.Current(ctx)
	if err != nil {
		return nil, err
	}

	positions, err := LoadPositions(ctx, g.db, e.ID, "c.name")
	if err != nil {
		return nil, err
	}

	rows, err := g.db.QueryContext(ctx, `
		SELECT id, name, level, vote_count, election_id FROM candidates
		WHERE election_id = $1 AND position_id IS NULL
		ORDER BY name
	`, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unassigned candidates: %w", err)
	}
	defer rows.Close()

	unassigned := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Level, &c.VoteCount, &c.ElectionID); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		unassigned = append(unassigned, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return &Listing{Election: e, Positions: positions, Unassigned: unassigned}, nil
}

// LoadPositions reads the positions of an election, each with its member
// candidates sorted by candidateOrder (a fixed ORDER BY clause, never user input).
func LoadPositions(ctx context.Context, conn *sql.DB, electionID, candidateOrder string) ([]models.Position, error) {
	positions, err := loadPositionRows(ctx, conn, electionID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(positions))
	for i, p := range positions {
		index[p.ID] = i
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT pc.position_id, c.id, c.name, c.level, c.vote_count, c.election_id
		FROM position_candidates pc
		JOIN candidates c ON c.id = pc.candidate_id
		WHERE c.election_id = $1
		ORDER BY `+candidateOrder, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			member string
			c      models.Candidate
		)
		if err := rows.Scan(&member, &c.ID, &c.Name, &c.Level, &c.VoteCount, &c.ElectionID); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		if i, ok := index[member]; ok {
			c.PositionID = &positions[i].ID
			positions[i].Candidates = append(positions[i].Candidates, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return positions, nil
}

// loadPositionRows must fully drain its cursor before returning: SQLite runs
// with a single connection.
func loadPositionRows(ctx context.Context, conn *sql.DB, electionID string) ([]models.Position, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT id, name, election_id FROM positions
		WHERE election_id = $1
		ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.Name, &p.ElectionID); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Candidates = []models.Candidate{}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return positions, nil
}
