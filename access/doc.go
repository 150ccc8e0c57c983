// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package access resolves callers to tiers and decides where to send them.

# Tiers

Voters are students verified by the campus portal. Staff and admins share one
code per tier, provisioned from configuration at startup:

	resolver := access.NewResolver(db)
	err := resolver.Provision(ctx, cfg.StaffCode, cfg.AdminCode)
	tier, err := resolver.Authorize(ctx, code) // highest matching tier

# Capabilities

Routes declare the capability they need. Admin satisfies Staff; only verified
students hold Voter.

	access.Staff.Allows(models.TierAdmin) // true
	access.Admin.Entry("/result")         // "/access?next=%2Fresult"
	access.Voter.Entry("/vote")           // "/reg"
*/
package access
