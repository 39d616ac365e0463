// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package authz provides role-based authorization using Casbin.
//
// # Architecture
//
//	Request -> auth.Authenticate -> authz.AuthorizeRequest -> Handler
//
// The request path is the object and the HTTP method maps to an action
// (GET/HEAD/OPTIONS read, POST/PUT/PATCH write, DELETE delete).
//
// # RBAC Model
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
//
// # Default Policy
//
// The embedded policy grants the user role access to the recommendation,
// behavior and profile routes, and the admin role (which inherits user)
// access to /v1/admin/*. A subject without roles is checked as user.
// Setting security.policy_path replaces the embedded policy with a CSV file
// that is reloaded every 30 seconds.
//
// Denials are answered with 403 and the standard JSON error envelope.
package authz
