// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the campus election server.

One election runs at a time. Staff register positions and candidates while it
is scheduled, verified students cast one ballot each while it is active, and
the admin reads the tallies, rotates the access codes and cancels the
election.

# Starting the Server

The server reads CLI flags, then environment variables (a .env file is
loaded if present), then an optional YAML file:

	DATABASE_URL=file:votes.db SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - SESSION_SECRET (--session-secret): key for signing session cookies
  - STAFF_CODE (--staff-code): initial staff access code
  - ADMIN_CODE (--admin-code): initial admin access code

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TIMEZONE (--tz): zone election windows are entered in (default: Africa/Lagos)
  - VERIFIER_URL, VERIFIER_ACCOUNT_URL: student portal endpoints
  - VOTE_REQUIRES_ACTIVE: reject ballots outside the active phase (default: true)
  - SESSION_TTL (--session-ttl): session lifetime (default: 2h)
  - RATE_LIMIT (--rate-limit): login attempts per minute per IP (default: 10)
  - TRUSTED_PROXIES (--trusted-proxies): comma-separated proxy IPs/CIDRs whose
    X-Forwarded-For and X-Real-IP headers are believed (default: none)
  - SECURE_COOKIES (--secure-cookies): mark session cookies Secure (default: false)
  - CONFIG_FILE (-c): YAML file with the same settings

The access codes are only used when no code has been stored yet; after that
the admin changes them through the API.

# Architecture

  - handlers: HTTP request handlers (voting, registration, results, election, access)
  - router: declarative route table with per-route capabilities
  - election: current election and its derived phase
  - registration: positions and candidates
  - ballot: exactly-once vote recording and results
  - access: access codes, tiers and capabilities
  - session: server-side sessions behind signed cookies, flash messages
  - verifier: student portal credential check
  - middleware: CORS, logging, rate limiting, JSON helpers
  - metrics: Prometheus collectors
  - models, db, ids, auth, cliparse: shared types, schema, keys, hashing, configuration

See package documentation for each component.
*/
package main
