// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

/*
Package eventbus moves behavior events from the request path to the DuckDB
behavior log.

The request path calls Bus.Record, which serializes the event and publishes
it on the configured topic. A Consumer runs a Watermill router with recovery
and retry middleware in front of BehaviorHandler, which writes each event
through a BehaviorWriter.

Drivers:

  - gochannel: in-process pub/sub. Events published while no consumer is
    subscribed are lost; the consumer runs for the lifetime of the process.
  - nats: NATS JetStream through watermill-nats. The stream is created or
    updated at startup, the event id is used as the JetStream message id for
    duplicate suppression, and an embedded nats-server can be started in
    process when no external server is configured.

Behavior inserts are idempotent on the event id, so broker redelivery after
a failed acknowledgement does not duplicate rows.
*/
package eventbus
