// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/dairdly/voting/models"
)

// FlashCookieName carries one message to the next page
const FlashCookieName = "flash"

// SetFlash queues a message for the next response that reads it
func SetFlash(w http.ResponseWriter, level, message string) {
	raw, err := json.Marshal(models.Flash{Level: level, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the queued message, if any, and clears it
func PopFlash(w http.ResponseWriter, r *http.Request) *models.Flash {
	c, err := r.Cookie(FlashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: FlashCookieName, Value: "", Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f models.Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}
