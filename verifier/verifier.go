// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package verifier

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dairdly/voting/metrics"
)

// Result of one verification attempt
type Result int

const (
	Verified Result = iota + 1
	Rejected
	Unreachable
)

func (r Result) String() string {
	switch r {
	case Verified:
		return "verified"
	case Rejected:
		return "rejected"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Client checks student credentials against the campus portal.
// A login is accepted when the portal lands the request on AccountURL after
// following redirects; the status code is not consulted.
type Client struct {
	HTTP       *http.Client
	LoginURL   string
	AccountURL string
}

func NewClient(loginURL, accountURL string) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		LoginURL:   loginURL,
		AccountURL: accountURL,
	}
}

// Validate posts the credentials once. There is no retry.
func (c *Client) Validate(ctx context.Context, username, password string) Result {
	form := url.Values{"username": {username}, "password": {password}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return c.record(username, Unreachable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return c.record(username, Unreachable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.Request != nil && resp.Request.URL.String() == c.AccountURL {
		return c.record(username, Verified, nil)
	}
	return c.record(username, Rejected, nil)
}

func (c *Client) record(username string, res Result, err error) Result {
	metrics.VerifierResults.WithLabelValues(res.String()).Inc()
	switch res {
	case Unreachable:
		slog.Warn("identity verifier unreachable", "username", username, "outcome", res.String(), "error", err)
	case Rejected:
		slog.Info("student credentials rejected", "username", username, "outcome", res.String())
	default:
		slog.Info("student verified", "username", username)
	}
	return res
}
