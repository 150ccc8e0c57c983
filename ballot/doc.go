// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballot tallies ballots and serves results.

A ballot is a mapping of position name to candidate name. Only keys naming a
position of the current election are counted; anything else in the submission
(csrf tokens, stray fields) is never looked at.

	engine := ballot.NewEngine(db, elections, cfg.VoteRequiresActive)
	outcome, err := engine.Cast(ctx, voterID, r.PostForm)

Each ballot runs in one transaction whose first statement flips the voter's
has_voted flag with a conditional update. If no row changed the voter has
already voted and the transaction is rolled back untouched. Tallies are
aggregate counters only; no record links a voter to a choice.

Results are ordered by vote count then level, both ascending, and paged one
position at a time with Page.
*/
package ballot
