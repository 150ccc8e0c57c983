// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite (modernc.org/sqlite, the default) is opened with a busy timeout,
foreign keys enabled, and a single connection so that ballot transactions
serialize. PostgreSQL uses github.com/lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - elections: name, [start_at, end_at) window, cached started/ended hints
  - positions: upper-cased unique name, owning election
  - candidates: title-cased unique name, level, vote_count, position back-reference
  - position_candidates: position membership set
  - voters: external username and has_voted flag
  - access_principals: bcrypt hashes of the staff and admin codes
  - sessions: server-side sessions behind the signed cookie

# Relationships

	elections 1──* positions
	elections 1──* candidates
	positions *──* candidates (via position_candidates)
	voters    1──* sessions

No foreign key cascades: deleting a position clears candidates.position_id
instead of deleting candidates, and the election purge deletes rows
explicitly in dependency order.

# Errors

IsUniqueViolation recognizes duplicate-key failures from both drivers.
*/
package db
