// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/aura/internal/config"
	"github.com/tomtom215/aura/internal/models"
)

// mockWriter records inserted events and fails the first failFirst calls.
type mockWriter struct {
	mu        sync.Mutex
	events    []models.BehaviorEvent
	calls     int
	failFirst int
	got       chan struct{}
}

func newMockWriter(failFirst int) *mockWriter {
	return &mockWriter{failFirst: failFirst, got: make(chan struct{}, 16)}
}

func (m *mockWriter) InsertBehaviorEvent(_ context.Context, ev *models.BehaviorEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failFirst {
		return errors.New("duckdb busy")
	}
	m.events = append(m.events, *ev)
	m.got <- struct{}{}
	return nil
}

func (m *mockWriter) snapshot() ([]models.BehaviorEvent, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.BehaviorEvent(nil), m.events...), m.calls
}

func goChannelConfig() *config.EventBusConfig {
	return &config.EventBusConfig{
		Driver:        DriverGoChannel,
		Topic:         "aura.behavior.test",
		BufferSize:    16,
		RetryCount:    3,
		RetryInterval: time.Millisecond,
	}
}

func quietLogger() watermill.LoggerAdapter {
	return watermill.NopLogger{}
}

// startConsumer runs a consumer until the test ends.
func startConsumer(t *testing.T, bus *Bus, w BehaviorWriter, retries int) *Consumer {
	t.Helper()

	c := NewConsumer(bus, NewBehaviorHandler(w), ConsumerConfig{
		CloseTimeout:    time.Second,
		RetryMaxRetries: retries,
		RetryInterval:   time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	readyCtx, readyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer readyCancel()
	if err := c.WaitReady(readyCtx); err != nil {
		t.Fatalf("consumer not ready: %v", err)
	}
	return c
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestStreamName(t *testing.T) {
	t.Parallel()

	if got := StreamName("aura.behavior"); got != "AURA_BEHAVIOR" {
		t.Errorf("StreamName = %q", got)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := goChannelConfig()
	cfg.Driver = "kafka"
	if _, err := New(context.Background(), cfg, quietLogger()); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestBus_RecordDelivers(t *testing.T) {
	t.Parallel()

	bus, err := New(context.Background(), goChannelConfig(), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })

	w := newMockWriter(0)
	startConsumer(t, bus, w, 0)

	reward := 0.9
	ev := &models.BehaviorEvent{
		ID:        "beh-1",
		UserID:    "u1",
		EventID:   "e1",
		Action:    models.ActionPurchase,
		Timestamp: time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC),
		Reward:    &reward,
	}
	if err := bus.Record(context.Background(), ev); err != nil {
		t.Fatalf("Record: %v", err)
	}
	waitFor(t, w.got)

	events, _ := w.snapshot()
	if len(events) != 1 || events[0].ID != "beh-1" || events[0].Reward == nil || *events[0].Reward != 0.9 {
		t.Errorf("persisted = %+v", events)
	}
	if !events[0].Timestamp.Equal(ev.Timestamp) {
		t.Errorf("timestamp = %v", events[0].Timestamp)
	}
}

func TestBus_RetriesFailedWrites(t *testing.T) {
	t.Parallel()

	bus, err := New(context.Background(), goChannelConfig(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = bus.Close() })

	w := newMockWriter(2)
	startConsumer(t, bus, w, 3)

	if err := bus.Record(context.Background(), &models.BehaviorEvent{
		ID: "beh-retry", UserID: "u1", Action: models.ActionLike, Timestamp: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w.got)

	events, calls := w.snapshot()
	if len(events) != 1 || calls != 3 {
		t.Errorf("events = %d, calls = %d; want 1 and 3", len(events), calls)
	}
}

func TestBus_RecordAfterClose(t *testing.T) {
	t.Parallel()

	bus, err := New(context.Background(), goChannelConfig(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	err = bus.Record(context.Background(), &models.BehaviorEvent{ID: "x", UserID: "u"})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	if _, err := bus.NewSubscriber(); !errors.Is(err, ErrClosed) {
		t.Errorf("NewSubscriber err = %v, want ErrClosed", err)
	}
}

func TestBehaviorHandler_DropsMalformed(t *testing.T) {
	t.Parallel()

	w := newMockWriter(0)
	h := NewBehaviorHandler(w)

	for _, payload := range []string{`not json`, `{"id":"","user_id":"u"}`, `{"id":"x"}`} {
		if err := h.Handle(message.NewMessage(watermill.NewUUID(), []byte(payload))); err != nil {
			t.Errorf("payload %q: err = %v, want nil (ack and drop)", payload, err)
		}
	}
	processed, dropped := h.Stats()
	if processed != 0 || dropped != 3 {
		t.Errorf("Stats = %d, %d", processed, dropped)
	}
	if _, calls := w.snapshot(); calls != 0 {
		t.Errorf("writer called %d times", calls)
	}
}

func TestBehaviorHandler_WriteErrorIsReturned(t *testing.T) {
	t.Parallel()

	h := NewBehaviorHandler(newMockWriter(1))
	msg := message.NewMessage("m1", []byte(`{"id":"b1","user_id":"u","action":"like","timestamp":"2026-06-01T00:00:00Z"}`))
	if err := h.Handle(msg); err == nil {
		t.Error("expected write error to propagate for redelivery")
	}
	if err := h.Handle(msg); err != nil {
		t.Errorf("second attempt: %v", err)
	}
	if processed, _ := h.Stats(); processed != 1 {
		t.Errorf("processed = %d", processed)
	}
}
