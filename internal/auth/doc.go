// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

/*
Package auth authenticates API callers.

Every recommendation, behavior and profile route acts on behalf of the
authenticated user: the user id comes from the request context, never from
the request body.

Authentication Modes:

 1. JWT (default): an HS256 bearer token in the Authorization header. The
    "sub" claim is the user id and an optional "roles" claim carries roles.
    The issuer is checked when one is configured.
 2. None: every request is served as the configured development user
    (default "test_user_no_auth"). Intended for local development only.

Users listed in AdminUsers are granted the admin role regardless of their
token claims. Authorization decisions are made downstream by package authz.

Usage:

	jm, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw, err := auth.NewMiddleware(&cfg.Security, jm)
	if err != nil {
	    return err
	}
	r.Use(mw.Authenticate)

	// in a handler
	userID := auth.UserID(r.Context())

Failures are answered with 401 and the standard JSON error envelope.
*/
package auth
