// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package access

import (
	"net/url"

	"github.com/dairdly/voting/models"
)

// Capability is what a route requires of the caller's tier
type Capability int

const (
	Voter Capability = iota + 1
	Staff
	Admin
)

func (c Capability) String() string {
	switch c {
	case Voter:
		return "voter"
	case Staff:
		return "staff"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Allows reports whether tier satisfies c. Admin satisfies Staff; the voter
// capability is held by verified students only.
func (c Capability) Allows(tier models.Tier) bool {
	switch c {
	case Voter:
		return tier == models.TierVoter
	case Staff:
		return tier >= models.TierStaff
	case Admin:
		return tier == models.TierAdmin
	default:
		return false
	}
}

// Entry is where a caller without c is sent from path
func (c Capability) Entry(path string) string {
	if c == Voter {
		return VoterEntry
	}
	return CodeEntry + "?next=" + url.QueryEscape(path)
}
