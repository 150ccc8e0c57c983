// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the election service.

# Handler Types

Each handler is a struct with database and config dependencies:

  - VotingHandler: student sign-in, ballot and vote submission
  - RegistrationHandler: positions and candidates (staff)
  - ResultsHandler: paginated results (admin) and the public candidate list
  - ElectionHandler: scheduling and cancelling the election (admin)
  - AccessHandler: access-code login, logout and code changes

Handlers are created via constructor functions that accept *sql.DB and Config:

	registrationHandler := handlers.NewRegistrationHandler(db, cfg)

# Election Phases

The current election moves through scheduled → active → ended, derived from
its window on every request:

	POST /register/position  → CreatePosition (scheduled only)
	POST /register/candidate → CreateCandidate (scheduled only)
	POST /reg                → Register (active only)
	POST /vote               → Vote (active only)

# Voting Flow

Students sign in with their portal credentials, which are checked by a
StudentVerifier. A verified student gets a voter session and the ballot:

	POST /reg  → Register (303 to /vote, or /thanks if already voted)
	GET  /vote → Ballot (positions and candidates, no tallies)
	POST /vote → Vote (303 to /thanks, session ended)

A voter is counted at most once; repeated submissions are acknowledged and
ignored.

# Responses

Successful form posts answer 303 See Other and queue a flash message in a
short-lived cookie. Failures are JSON error bodies naming the offending form
field:

	{"error": "Conflict", "message": "Position exists", "field": "name"}
*/
package handlers
