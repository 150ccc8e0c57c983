// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides access-code hashing and session token utilities.

# Access Codes

Staff and admin share one code per tier. Codes are stored as bcrypt hashes:

	hash, err := auth.HashCode("s3cret")
	ok := auth.VerifyCode(hash, "s3cret")

# Session Tokens

The session cookie carries an HS256 JWT whose ID claim names a server-side
session row. The row is the source of truth, so a session is revoked by
deleting it even while the token is unexpired:

	token, err := auth.SignSession(sessionID, "voter", expiresAt, secret)
	claims, err := auth.ParseSession(token, secret)

# Session IDs

	id, err := auth.GenerateSessionID() // 21-char nanoid
*/
package auth
