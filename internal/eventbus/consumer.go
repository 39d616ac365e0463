// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/metrics"
	"github.com/tomtom215/aura/internal/models"
)

// BehaviorWriter persists behavior events. *database.DB satisfies it.
type BehaviorWriter interface {
	InsertBehaviorEvent(ctx context.Context, ev *models.BehaviorEvent) error
}

// SubscriberSource hands out a subscriber per consumer run. *Bus satisfies it.
type SubscriberSource interface {
	NewSubscriber() (message.Subscriber, error)
	Topic() string
	Logger() watermill.LoggerAdapter
}

// ConsumerConfig tunes the router in front of the behavior handler.
type ConsumerConfig struct {
	CloseTimeout    time.Duration
	RetryMaxRetries int
	RetryInterval   time.Duration
}

// BehaviorHandler decodes behavior messages and writes them to the log.
type BehaviorHandler struct {
	writer BehaviorWriter

	processed atomic.Int64
	dropped   atomic.Int64
}

// NewBehaviorHandler wraps writer.
func NewBehaviorHandler(writer BehaviorWriter) *BehaviorHandler {
	return &BehaviorHandler{writer: writer}
}

// Handle is a watermill NoPublishHandlerFunc. Undecodable messages are
// acknowledged and dropped; write failures are returned so the router
// retries and the broker redelivers.
func (h *BehaviorHandler) Handle(msg *message.Message) error {
	var ev models.BehaviorEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil || ev.ID == "" || ev.UserID == "" {
		h.dropped.Add(1)
		metrics.BehaviorEventsFailed.WithLabelValues("decode").Inc()
		logging.Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Msg("Dropping malformed behavior message")
		return nil
	}

	ctx := msg.Context()
	if rid := msg.Metadata.Get("request_id"); rid != "" {
		ctx = logging.ContextWithRequestID(ctx, rid)
	}

	if err := h.writer.InsertBehaviorEvent(ctx, &ev); err != nil {
		metrics.BehaviorEventsFailed.WithLabelValues("persist").Inc()
		logging.Ctx(ctx).Error().
			Err(err).
			Str("behavior_id", ev.ID).
			Msg("Failed to persist behavior event")
		return fmt.Errorf("persist behavior event %s: %w", ev.ID, err)
	}

	h.processed.Add(1)
	metrics.BehaviorEventsPersisted.Inc()
	return nil
}

// Stats returns processed and dropped message counts.
func (h *BehaviorHandler) Stats() (processed, dropped int64) {
	return h.processed.Load(), h.dropped.Load()
}

// Consumer runs a watermill router that feeds BehaviorHandler. Each Serve
// call builds a fresh router, so a supervisor may restart it.
type Consumer struct {
	source  SubscriberSource
	handler *BehaviorHandler
	cfg     ConsumerConfig

	router atomic.Pointer[message.Router]
}

// NewConsumer wires handler to source.
func NewConsumer(source SubscriberSource, handler *BehaviorHandler, cfg ConsumerConfig) *Consumer {
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}
	return &Consumer{source: source, handler: handler, cfg: cfg}
}

// Serve runs until ctx is cancelled.
func (c *Consumer) Serve(ctx context.Context) error {
	sub, err := c.source.NewSubscriber()
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: c.cfg.CloseTimeout}, c.source.Logger())
	if err != nil {
		_ = sub.Close()
		return fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      c.cfg.RetryMaxRetries,
			InitialInterval: c.cfg.RetryInterval,
			MaxInterval:     10 * c.cfg.RetryInterval,
			Multiplier:      2,
			Logger:          c.source.Logger(),
		}.Middleware,
	)
	router.AddConsumerHandler("behavior-writer", c.source.Topic(), sub, c.handler.Handle)

	c.router.Store(router)
	defer c.router.Store(nil)

	logging.Info().Str("topic", c.source.Topic()).Msg("Behavior consumer started")
	err = router.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("behavior router: %w", err)
	}
	return ctx.Err()
}

func (c *Consumer) String() string {
	return "behavior-consumer"
}

// Running reports whether the router is active.
func (c *Consumer) Running() bool {
	r := c.router.Load()
	if r == nil {
		return false
	}
	return r.IsRunning()
}

// WaitReady blocks until the current Serve call has subscribed.
func (c *Consumer) WaitReady(ctx context.Context) error {
	t := time.NewTicker(5 * time.Millisecond)
	defer t.Stop()
	for {
		if r := c.router.Load(); r != nil {
			select {
			case <-r.Running():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
