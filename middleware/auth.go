// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/dairdly/voting/access"
	"github.com/dairdly/voting/session"
)

// PrincipalLoader resolves the caller of a request
type PrincipalLoader interface {
	Load(r *http.Request) (*session.Principal, error)
}

// WithPrincipal loads the caller's session into the request context.
// Load failures degrade to an anonymous caller.
func WithPrincipal(loader PrincipalLoader, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := loader.Load(r)
		if err != nil {
			slog.Error("failed to load session", "path", r.URL.Path, "error", err)
		}
		next.ServeHTTP(w, r.WithContext(session.WithPrincipal(r.Context(), p)))
	})
}

// Require lets the request through only when the caller holds capability c.
// Everyone else is redirected to the capability's entry point.
func Require(c access.Capability, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := session.FromContext(r.Context())
		if !c.Allows(p.Tier) {
			slog.Info("access denied", "path", r.URL.Path, "required", c.String(), "tier", p.Tier.String())
			http.Redirect(w, r, c.Entry(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
