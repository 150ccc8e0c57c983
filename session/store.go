// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dairdly/voting/auth"
	"github.com/dairdly/voting/models"
)

// Store keeps server-side session rows
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create inserts a session for role. voterID is set for voter sessions only.
func (s *Store) Create(ctx context.Context, role string, voterID *string, ttl time.Duration) (*models.Session, error) {
	id, err := auth.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := &models.Session{
		ID:        id,
		Role:      role,
		VoterID:   voterID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, role, voter_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sess.ID, sess.Role, voterID, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

// Get returns a live session. Missing and expired sessions are ErrAuth.
func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	var (
		sess    models.Session
		voterID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, role, voter_id, created_at, expires_at
		FROM sessions WHERE id = $1
	`, id).Scan(&sess.ID, &sess.Role, &voterID, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrAuth
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if !s.now().Before(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, models.ErrAuth
	}
	if voterID.Valid {
		sess.VoterID = &voterID.String
	}
	return &sess, nil
}

// Delete removes one session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteVoter removes every session of a voter
func (s *Store) DeleteVoter(ctx context.Context, voterID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE voter_id = $1`, voterID); err != nil {
		return fmt.Errorf("failed to delete voter sessions: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions past their expiry and returns how many went
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}
