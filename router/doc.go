// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router declares the HTTP routes of the election service.

Each route names its pattern, the capability it requires and whether it is
rate limited:

	{Pattern: "GET /list", Capability: access.Staff, Handler: registrationHandler.List}

Routes without a capability are public. Every route is instrumented for
Prometheus and logged; the whole mux runs behind the session loader and CORS.

	mux := router.NewRouter(db, cfg)
*/
package router
