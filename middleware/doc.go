// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (request_id, method, path, remote) and completion
(duration_ms). The request id is taken from X-Request-ID when it is a UUID,
generated otherwise, and echoed in the response.

# Sessions and Capabilities

WithPrincipal loads the caller's session into the request context. Require
guards one route with an access capability:

	h := middleware.Require(access.Staff, http.HandlerFunc(list))
	handler := middleware.WithPrincipal(sessions, mux)

Callers without the capability get a 303 to /reg (voters) or
/access?next=<path> (staff and admin).

# Rate Limiting

Login endpoints are throttled per client IP with a token bucket:

	limiter := middleware.NewRateLimiter(cfg.RateLimit) // per minute
	limiter.TrustedProxies = cfg.TrustedProxies
	mux.Handle("POST /access", limiter.Wrap(h))

Idle buckets are dropped lazily on later calls, so no goroutine is started.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# Request Bodies

Forms may be posted urlencoded or as a flat JSON object:

	values, err := middleware.FormValues(r)

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "message")
	middleware.FieldErrorResponse(w, http.StatusConflict, "name", "Position exists")

# Client IP Extraction

The connection address is authoritative. X-Forwarded-For and X-Real-IP are
read only when that address falls inside one of the configured proxy prefixes:

	ip := middleware.GetClientIP(r, cfg.TrustedProxies)
*/
package middleware
