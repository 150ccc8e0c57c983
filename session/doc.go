// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session manages login sessions and flash messages.

A session is a row in the sessions table referenced by a signed cookie. The
row is authoritative: logging out, casting a ballot, or cancelling the
election deletes rows, and the matching cookies stop resolving immediately.

	mgr := session.NewManager(session.NewStore(db), cfg.SessionSecret, cfg.SessionTTL)
	p, err := mgr.Start(ctx, w, r, models.TierVoter, voterID)
	p, err = mgr.Load(r)

Flash messages ride in a short-lived cookie and are consumed by the next page:

	session.SetFlash(w, models.FlashSuccess, "Candidate has been successfully created")
	f := session.PopFlash(w, r)
*/
package session
