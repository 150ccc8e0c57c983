// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Each setting is resolved in order: CLI flag, environment variable, YAML
config file, default.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite file or PostgreSQL connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SessionSecret: Signs session cookies (required)
  - StaffCode, AdminCode: Initial shared access codes (required)
  - VerifierURL, VerifierAccountURL: Student portal login and account pages
  - Timezone: Zone of election windows (default: Africa/Lagos)
  - VoteRequiresActive: Reject ballots outside the active phase (default: true)
  - SessionTTL: Session lifetime (default: 2h)
  - RateLimit: Login attempts per minute per IP (default: 10)

# CLI Flags and Environment Variables

	-c                     CONFIG_FILE
	-p                     PORT
	-d                     DATABASE_URL
	-t                     DATABASE_TYPE
	-session-secret        SESSION_SECRET
	-staff-code            STAFF_CODE
	-admin-code            ADMIN_CODE
	-verifier-url          VERIFIER_URL
	-verifier-account-url  VERIFIER_ACCOUNT_URL
	-tz                    TIMEZONE
	-vote-requires-active  VOTE_REQUIRES_ACTIVE
	-session-ttl           SESSION_TTL
	-rate-limit            RATE_LIMIT

# Config File

	port: 3318
	database:
	  url: postgres://localhost/voting
	  type: postgres
	session-secret: change-me
	staff-code: staff
	admin-code: admin
	verifier:
	  login-url: https://mouauportal.edu.ng/login.php
	  account-url: https://mouauportal.edu.ng/my-account-student.php
	timezone: Africa/Lagos
	vote-requires-active: true
	session-ttl: 2h
	rate-limit: 10

StaffCode and AdminCode only seed the access principals on first start; a
code rotated through the admin pages is not reset by a restart.
*/
package cliparse
