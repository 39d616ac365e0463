// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package testinfra provides container-backed infrastructure for integration
// tests. Everything here is compiled only with the integration build tag.
//
// # NATS Container
//
// NATSContainer runs a JetStream-enabled NATS server so the event bus can be
// exercised against a real broker:
//
//	func TestBehaviorOverNATS(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    natsC, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, natsC)
//
//	    cfg.EventBus.URL = natsC.URL
//	    // ...
//	}
//
// # CI Considerations
//
// These tests require Docker. They are skipped when the Docker daemon is not
// reachable, and the first run pulls the image.
package testinfra
