// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/aura/internal/config"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/metrics"
	"github.com/tomtom215/aura/internal/models"
)

// Drivers.
const (
	DriverGoChannel = "gochannel"
	DriverNATS      = "nats"
)

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("event bus closed")

// Bus publishes behavior events and hands out subscribers for the consumer.
// With the gochannel driver one in-process pub/sub serves both sides; with
// the nats driver messages go through a JetStream stream, optionally on an
// embedded server owned by the Bus.
type Bus struct {
	cfg    config.EventBusConfig
	logger watermill.LoggerAdapter

	pub    message.Publisher
	local  *gochannel.GoChannel
	server *EmbeddedServer
	url    string

	mu     sync.RWMutex
	closed bool
}

// New builds a bus for cfg.Driver.
func New(ctx context.Context, cfg *config.EventBusConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = watermill.NewSlogLogger(logging.NewSlogLogger("eventbus"))
	}
	b := &Bus{cfg: *cfg, logger: logger}

	switch cfg.Driver {
	case DriverGoChannel, "":
		b.local = gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.BufferSize,
		}, logger)
		b.pub = b.local

	case DriverNATS:
		b.url = cfg.URL
		if cfg.EmbeddedServer {
			srv, err := NewEmbeddedServer(ServerConfig{
				Port:     cfg.ServerPort,
				StoreDir: cfg.StoreDir,
				MaxMem:   cfg.MaxMemory,
				MaxStore: cfg.MaxStore,
			})
			if err != nil {
				return nil, err
			}
			b.server = srv
			b.url = srv.ClientURL()
			logging.Info().Str("url", b.url).Msg("Embedded NATS server started")
		}

		if err := EnsureStream(ctx, b.url, cfg.Topic); err != nil {
			b.shutdownServer()
			return nil, err
		}
		pub, err := newNATSPublisher(b.url, logger)
		if err != nil {
			b.shutdownServer()
			return nil, err
		}
		b.pub = pub

	default:
		return nil, fmt.Errorf("unknown event bus driver %q", cfg.Driver)
	}

	logging.Info().Str("driver", b.Driver()).Str("topic", cfg.Topic).Msg("Event bus ready")
	return b, nil
}

// Driver returns the active driver name.
func (b *Bus) Driver() string {
	if b.local != nil {
		return DriverGoChannel
	}
	return DriverNATS
}

// Topic returns the behavior topic.
func (b *Bus) Topic() string {
	return b.cfg.Topic
}

// Record publishes one behavior event. The event id doubles as the message
// id, so JetStream discards a republished duplicate.
func (b *Bus) Record(ctx context.Context, ev *models.BehaviorEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		metrics.BehaviorEventsFailed.WithLabelValues("publish").Inc()
		return fmt.Errorf("serialize behavior event: %w", err)
	}

	msg := message.NewMessage(ev.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("user_id", ev.UserID)
	msg.Metadata.Set("action", string(ev.Action))
	msg.Metadata.Set(natsgo.MsgIdHdr, ev.ID)
	if rid := logging.RequestIDFromContext(ctx); rid != "" {
		msg.Metadata.Set("request_id", rid)
	}

	if err := b.pub.Publish(b.cfg.Topic, msg); err != nil {
		metrics.BehaviorEventsFailed.WithLabelValues("publish").Inc()
		return fmt.Errorf("publish behavior event %s: %w", ev.ID, err)
	}
	metrics.BehaviorEventsPublished.Inc()
	return nil
}

// NewSubscriber returns a subscriber for one consumer run. The router closes
// its subscriber on shutdown, so the in-process subscriber is wrapped to
// keep the shared pub/sub open for publishers.
func (b *Bus) NewSubscriber() (message.Subscriber, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}
	if b.local != nil {
		return nopCloseSubscriber{b.local}, nil
	}
	return newNATSSubscriber(b.url, &b.cfg, b.logger)
}

// Logger returns the watermill logger shared by the bus components.
func (b *Bus) Logger() watermill.LoggerAdapter {
	return b.logger
}

// Close closes the publisher and the embedded server, if any.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	err := b.pub.Close()
	b.shutdownServer()
	return err
}

func (b *Bus) shutdownServer() {
	if b.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.server.Shutdown(ctx); err != nil {
		logging.Warn().Err(err).Msg("Embedded NATS server shutdown incomplete")
	}
}

type nopCloseSubscriber struct {
	message.Subscriber
}

func (nopCloseSubscriber) Close() error { return nil }
