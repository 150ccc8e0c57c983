// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, response, and error types shared by every
package of the election service.

# Domain Types

  - Election: name and [StartAt, EndAt) window; phase is derived, never stored
  - Position: upper-cased office name bound to one election
  - Candidate: title-cased name, level, aggregate vote count
  - Voter: externally verified student and the has_voted flag
  - AccessPrincipal: the shared staff/admin code hashes
  - Session: server-side session row behind the signed cookie

# Phases and Tiers

	PhaseScheduled → PhaseActive → PhaseEnded

Tiers are ordered (TierNone < TierVoter < TierStaff < TierAdmin) so that an
admin passes every staff check.

# Errors

Sentinel errors describe the failure taxonomy:

	ErrElectionNotFound  no current election
	ErrNotFound          missing position/candidate
	ErrExists            duplicate name
	ErrPhase             registration outside the scheduled phase
	ErrWrongCode         wrong old access code
	ErrAuth              missing or insufficient credentials

ValidationError wraps one of them and names the offending form field:

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		// ve.Field == "name"
	}
*/
package models
