// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package access

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dairdly/voting/auth"
	"github.com/dairdly/voting/db"
	"github.com/dairdly/voting/ids"
	"github.com/dairdly/voting/metrics"
	"github.com/dairdly/voting/models"
)

// Entry points for unauthenticated requests
const (
	VoterEntry = "/reg"
	CodeEntry  = "/access"
)

// MaxUsernameLength bounds the student username accepted at /reg
const MaxUsernameLength = 10

// Resolver maps shared access codes and verified students to tiers
type Resolver struct {
	db *sql.DB
}

func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{db: db}
}

// Provision stores the staff and admin codes on first start.
// Existing principals are left untouched so a rotated code survives restarts.
func (r *Resolver) Provision(ctx context.Context, staffCode, adminCode string) error {
	for _, p := range []struct{ role, code string }{
		{models.RoleStaff, staffCode},
		{models.RoleAdmin, adminCode},
	} {
		var exists bool
		err := r.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM access_principals WHERE role = $1)
		`, p.role).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check %s principal: %w", p.role, err)
		}
		if exists {
			slog.Debug("access principal already provisioned", "role", p.role)
			continue
		}

		hash, err := auth.HashCode(p.code)
		if err != nil {
			return fmt.Errorf("failed to hash %s code: %w", p.role, err)
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO access_principals (role, code_hash, updated_at)
			VALUES ($1, $2, $3)
		`, p.role, hash, time.Now().UTC())
		if db.IsUniqueViolation(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to provision %s principal: %w", p.role, err)
		}
		slog.Info("access principal provisioned", "role", p.role)
	}
	return nil
}

// Authorize returns the highest tier whose shared code matches, or TierNone.
func (r *Resolver) Authorize(ctx context.Context, code string) (models.Tier, error) {
	if code == "" {
		return models.TierNone, nil
	}

	principals, err := r.principals(ctx)
	if err != nil {
		return models.TierNone, err
	}

	tier := models.TierNone
	for _, p := range principals {
		t := models.TierFromRole(p.Role)
		if t > tier && auth.VerifyCode(p.CodeHash, code) {
			tier = t
		}
	}

	metrics.AccessAttempts.WithLabelValues(tier.String()).Inc()
	return tier, nil
}

func (r *Resolver) principals(ctx context.Context) ([]models.AccessPrincipal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role, code_hash FROM access_principals`)
	if err != nil {
		return nil, fmt.Errorf("failed to query access principals: %w", err)
	}
	defer rows.Close()

	var out []models.AccessPrincipal
	for rows.Next() {
		var p models.AccessPrincipal
		if err := rows.Scan(&p.Role, &p.CodeHash); err != nil {
			return nil, fmt.Errorf("failed to scan access principal: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate access principals: %w", err)
	}
	return out, nil
}

// ChangeCode rotates the shared code of tier after checking the old one
func (r *Resolver) ChangeCode(ctx context.Context, tier models.Tier, oldCode, newCode string) error {
	if tier != models.TierStaff && tier != models.TierAdmin {
		return fmt.Errorf("tier %s has no shared code: %w", tier, models.ErrInvalid)
	}
	if strings.TrimSpace(oldCode) == "" {
		return models.Invalid("old_access_code", models.ErrInvalid, "Enter the current access code")
	}
	if strings.TrimSpace(newCode) == "" {
		return models.Invalid("new_access_code", models.ErrInvalid, "Enter a new access code")
	}

	var hash string
	err := r.db.QueryRowContext(ctx, `
		SELECT code_hash FROM access_principals WHERE role = $1
	`, tier.String()).Scan(&hash)
	if err == sql.ErrNoRows {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query access principal: %w", err)
	}

	if !auth.VerifyCode(hash, oldCode) {
		slog.Warn("access code change rejected", "role", tier.String())
		return models.Invalid("old_access_code", models.ErrWrongCode, "Incorrect access code")
	}

	newHash, err := auth.HashCode(newCode)
	if err != nil {
		return fmt.Errorf("failed to hash access code: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE access_principals SET code_hash = $1, updated_at = $2 WHERE role = $3
	`, newHash, time.Now().UTC(), tier.String())
	if err != nil {
		return fmt.Errorf("failed to update access code: %w", err)
	}

	slog.Info("access code changed", "role", tier.String())
	return nil
}

// ValidateCredentials checks the shape of a /reg submission before the
// external verifier is called.
func ValidateCredentials(username, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return models.Invalid("username", models.ErrInvalid, "Enter your username")
	case len(username) > MaxUsernameLength:
		return models.Invalid("username", models.ErrInvalid, fmt.Sprintf("Username must be at most %d characters", MaxUsernameLength))
	case password == "":
		return models.Invalid("password", models.ErrInvalid, "Enter your password")
	}
	return nil
}

// Voter returns the voter with the given verified username, creating it on first login
func (r *Resolver) Voter(ctx context.Context, username string) (*models.Voter, error) {
	username = strings.TrimSpace(username)

	v, err := r.findVoter(ctx, username)
	if err == nil {
		return v, nil
	}
	if err != models.ErrNotFound {
		return nil, err
	}

	v = &models.Voter{ID: ids.New(), ExternalUsername: username, CreatedAt: time.Now().UTC()}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO voters (id, external_username, has_voted, created_at)
		VALUES ($1, $2, FALSE, $3)
	`, v.ID, v.ExternalUsername, v.CreatedAt)
	if db.IsUniqueViolation(err) {
		// concurrent first login
		return r.findVoter(ctx, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create voter: %w", err)
	}

	slog.Info("voter registered", "voter_id", v.ID)
	return v, nil
}

func (r *Resolver) findVoter(ctx context.Context, username string) (*models.Voter, error) {
	var v models.Voter
	err := r.db.QueryRowContext(ctx, `
		SELECT id, external_username, has_voted, created_at
		FROM voters WHERE external_username = $1
	`, username).Scan(&v.ID, &v.ExternalUsername, &v.HasVoted, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query voter: %w", err)
	}
	return &v, nil
}

// Landing is where a code login goes when no continuation is given
func Landing(tier models.Tier) string {
	switch tier {
	case models.TierAdmin:
		return "/manage"
	case models.TierStaff:
		return "/list"
	default:
		return CodeEntry
	}
}

// SafeNext returns next when it is a local path other than the code entry itself
func SafeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "", false
	}
	if u.Path == CodeEntry {
		return "", false
	}
	return next, true
}
