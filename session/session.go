// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dairdly/voting/auth"
	"github.com/dairdly/voting/models"
)

// CookieName is the session cookie
const CookieName = "session"

// Principal is the authenticated caller of a request
type Principal struct {
	SessionID string
	Tier      models.Tier
	VoterID   string
}

type contextKey struct{}

// WithPrincipal returns ctx carrying p
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal of the request, or an anonymous one
func FromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(contextKey{}).(*Principal); ok && p != nil {
		return p
	}
	return &Principal{Tier: models.TierNone}
}

// Manager issues and reads signed session cookies backed by Store rows
type Manager struct {
	store  *Store
	secret string
	ttl    time.Duration
	Secure bool
}

func NewManager(store *Store, secret string, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: secret, ttl: ttl}
}

func (m *Manager) Store() *Store {
	return m.store
}

// Start opens a session for tier and sets the cookie. Any session the
// request already carried is closed first.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, tier models.Tier, voterID string) (*Principal, error) {
	if old := FromContext(ctx); old.SessionID != "" {
		if err := m.store.Delete(ctx, old.SessionID); err != nil {
			return nil, err
		}
	}
	if _, err := m.store.PurgeExpired(ctx); err != nil {
		slog.Warn("failed to purge expired sessions", "error", err)
	}

	var vid *string
	if voterID != "" {
		vid = &voterID
	}
	sess, err := m.store.Create(ctx, tier.String(), vid, m.ttl)
	if err != nil {
		return nil, err
	}

	token, err := auth.SignSession(sess.ID, sess.Role, sess.ExpiresAt, m.secret)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("session started", "role", sess.Role, "session_id", sess.ID)
	return &Principal{SessionID: sess.ID, Tier: tier, VoterID: voterID}, nil
}

// Load resolves the request's cookie to a principal.
// A missing, forged, expired or revoked session yields an anonymous principal.
func (m *Manager) Load(r *http.Request) (*Principal, error) {
	anon := &Principal{Tier: models.TierNone}

	c, err := r.Cookie(CookieName)
	if err != nil {
		return anon, nil
	}
	claims, err := auth.ParseSession(c.Value, m.secret)
	if err != nil {
		slog.Debug("rejected session cookie", "error", err)
		return anon, nil
	}

	sess, err := m.store.Get(r.Context(), claims.ID)
	if errors.Is(err, models.ErrAuth) {
		return anon, nil
	}
	if err != nil {
		return anon, err
	}
	if sess.Role != claims.Subject {
		return anon, nil
	}

	p := &Principal{SessionID: sess.ID, Tier: models.TierFromRole(sess.Role)}
	if sess.VoterID != nil {
		p.VoterID = *sess.VoterID
	}
	return p, nil
}

// End deletes the request's session and clears the cookie
func (m *Manager) End(ctx context.Context, w http.ResponseWriter) error {
	p := FromContext(ctx)
	if p.SessionID != "" {
		if err := m.store.Delete(ctx, p.SessionID); err != nil {
			return err
		}
		slog.Info("session ended", "role", p.Tier.String(), "session_id", p.SessionID)
	}
	m.clearCookie(w)
	return nil
}

// EndVoter revokes every session of a voter and clears the cookie
func (m *Manager) EndVoter(ctx context.Context, w http.ResponseWriter, voterID string) error {
	if err := m.store.DeleteVoter(ctx, voterID); err != nil {
		return err
	}
	m.clearCookie(w)
	return nil
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
