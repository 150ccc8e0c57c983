// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election tracks the current election and its phase.

The current election is the most recently created one. Its phase is derived
from the clock on every call:

	now < StartAt           PhaseScheduled
	StartAt <= now < EndAt  PhaseActive
	now >= EndAt            PhaseEnded

The started/ended columns are refreshed as a side effect but never read for
decisions. Windows are entered as "2006-01-02 15:04 TO 2006-01-02 15:04" in the
configured time zone.
*/
package election
