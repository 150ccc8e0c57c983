// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropSchema removes every table. Used by tests and the purge tooling.
func DropSchema(db *sql.DB) error {
	for _, table := range []string{"sessions", "position_candidates", "candidates", "positions", "voters", "access_principals", "elections"} {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

// Statements are kept separate and portable between SQLite and PostgreSQL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS elections (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    start_at TIMESTAMP NOT NULL,
    end_at TIMESTAMP NOT NULL,
    started BOOLEAN NOT NULL DEFAULT FALSE,
    ended BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (start_at < end_at)
)`,

	`CREATE TABLE IF NOT EXISTS positions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    election_id TEXT NOT NULL REFERENCES elections(id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_position_election_id ON positions(election_id)`,

	// position_id is cleared, not cascaded, when a position is deleted
	`CREATE TABLE IF NOT EXISTS candidates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    level INTEGER NOT NULL CHECK (level IN (100, 200, 300, 400, 500)),
    vote_count INTEGER NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
    position_id TEXT REFERENCES positions(id),
    election_id TEXT NOT NULL REFERENCES elections(id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_position_id ON candidates(position_id)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidates(election_id)`,

	`CREATE TABLE IF NOT EXISTS position_candidates (
    position_id TEXT NOT NULL REFERENCES positions(id),
    candidate_id TEXT NOT NULL REFERENCES candidates(id),
    PRIMARY KEY (position_id, candidate_id)
)`,

	`CREATE TABLE IF NOT EXISTS voters (
    id TEXT PRIMARY KEY,
    external_username TEXT NOT NULL UNIQUE,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,

	`CREATE TABLE IF NOT EXISTS access_principals (
    role TEXT PRIMARY KEY CHECK (role IN ('staff', 'admin')),
    code_hash TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,

	`CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    role TEXT NOT NULL CHECK (role IN ('voter', 'staff', 'admin')),
    voter_id TEXT REFERENCES voters(id),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_session_voter_id ON sessions(voter_id)`,
}
