// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// # Error Format
//
// A single failure produces:
//
//	{"code": "VALIDATION_ERROR", "message": "lat must be a valid latitude (-90 to 90)",
//	 "details": {"field": "lat", "tag": "latitude", "value": 91}}
//
// Several failures are joined in the message and listed under
// details.fields.
//
// Domain errors such as an unknown behavior action or an out-of-range reward
// are not struct tags; the engine reports them with their own error codes.
package validation
