// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package registration manages positions and candidates of the current election.

Registration is open only while the current election is scheduled. Every write
checks, in order: an election exists, the phase is scheduled, the input is
valid, referenced rows exist, and the name is free.

	gate := registration.NewGate(db, elections)
	pos, err := gate.CreatePosition(ctx, "sug president")          // "SUG PRESIDENT"
	c, err := gate.CreateCandidate(ctx, "saMuel UCHe", 300, pos.ID) // "Samuel Uche"

Deleting a position keeps its candidates; their position reference is cleared
and they show up in Listing.Unassigned.
*/
package registration
