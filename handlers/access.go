// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/dairdly/voting/access"
	"github.com/dairdly/voting/cliparse"
	"github.com/dairdly/voting/middleware"
	"github.com/dairdly/voting/models"
	"github.com/dairdly/voting/session"
)

type AccessHandler struct {
	cfg      cliparse.Config
	resolver *access.Resolver
	sessions *session.Manager
}

func NewAccessHandler(db *sql.DB, cfg cliparse.Config, sessions *session.Manager) *AccessHandler {
	return &AccessHandler{cfg: cfg, resolver: access.NewResolver(db), sessions: sessions}
}

// AccessForm handles GET /access
func (h *AccessHandler) AccessForm(w http.ResponseWriter, r *http.Request) {
	next, _ := access.SafeNext(r.URL.Query().Get("next"))
	middleware.JSONResponse(w, http.StatusOK, models.FormResponse{
		Action: "/access",
		Fields: []string{"access_code"},
		Next:   next,
		Flash:  session.PopFlash(w, r),
	})
}

// Access handles POST /access
func (h *AccessHandler) Access(w http.ResponseWriter, r *http.Request) {
	values, err := middleware.FormValues(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	code := values.Get("access_code")
	if code == "" {
		writeError(w, r, models.Invalid("access_code", models.ErrInvalid, "Enter an access code"))
		return
	}

	tier, err := h.resolver.Authorize(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tier == models.TierNone {
		writeError(w, r, models.Invalid("access_code", models.ErrWrongCode, "Invalid access code"))
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, r, tier, ""); err != nil {
		writeError(w, r, err)
		return
	}

	if next, ok := access.SafeNext(values.Get("next")); ok {
		redirect(w, r, next)
		return
	}
	redirect(w, r, access.Landing(tier))
}

// Logout handles POST /logout
func (h *AccessHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), w); err != nil {
		writeError(w, r, err)
		return
	}
	redirect(w, r, "/")
}

// ChangeStaffCode handles POST /staff
func (h *AccessHandler) ChangeStaffCode(w http.ResponseWriter, r *http.Request) {
	h.changeCode(w, r, models.TierStaff)
}

// ChangeAdminCode handles POST /admin
func (h *AccessHandler) ChangeAdminCode(w http.ResponseWriter, r *http.Request) {
	h.changeCode(w, r, models.TierAdmin)
}

func (h *AccessHandler) changeCode(w http.ResponseWriter, r *http.Request, tier models.Tier) {
	values, err := middleware.FormValues(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.resolver.ChangeCode(r.Context(), tier, values.Get("old_access_code"), values.Get("new_access_code"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	label := "Staff"
	if tier == models.TierAdmin {
		label = "Admin"
	}
	flashAndRedirect(w, r, models.FlashSuccess, label+" access code has been changed", "/manage")
}
