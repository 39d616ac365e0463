// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// fakeServer blocks in ListenAndServe until Shutdown, unless listenErr is set.
type fakeServer struct {
	listenErr   error
	shutdownErr error

	started   chan struct{}
	release   chan struct{}
	listens   atomic.Int32
	shutdowns atomic.Int32
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.release
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.shutdowns.Add(1) == 1 {
		close(f.release)
	}
	return f.shutdownErr
}

func awaitStart(t *testing.T, f *fakeServer) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(time.Second):
		t.Fatal("ListenAndServe was not called")
	}
}

func serveAsync(svc *HTTPServerService) (context.CancelFunc, <-chan error) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	return cancel, errCh
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	t.Parallel()
	for _, d := range []time.Duration{0, -5 * time.Second} {
		if svc := NewHTTPServerService(newFakeServer(), d); svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: got %v, want 10s", d, svc.shutdownTimeout)
		}
	}
	if svc := NewHTTPServerService(newFakeServer(), time.Second); svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Parallel()

	bindErr := errors.New("bind: address already in use")
	drainErr := errors.New("drain deadline exceeded")

	tests := []struct {
		name        string
		listenErr   error
		shutdownErr error
		cancel      bool
		want        error
		shutdowns   int32
	}{
		{name: "cancel drains and returns ctx error", cancel: true, want: context.Canceled, shutdowns: 1},
		{name: "listen failure is returned", listenErr: bindErr, want: bindErr},
		{name: "shutdown failure is returned", shutdownErr: drainErr, cancel: true, want: drainErr, shutdowns: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newFakeServer()
			srv.listenErr = tt.listenErr
			srv.shutdownErr = tt.shutdownErr

			cancel, errCh := serveAsync(NewHTTPServerService(srv, time.Second))
			defer cancel()
			awaitStart(t, srv)
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, tt.want) {
					t.Errorf("Serve() = %v, want %v", err, tt.want)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return")
			}
			if got := srv.shutdowns.Load(); got != tt.shutdowns {
				t.Errorf("Shutdown calls = %d, want %d", got, tt.shutdowns)
			}
		})
	}
}

func TestHTTPServerService_RestartedBySupervisor(t *testing.T) {
	t.Parallel()

	srv := newFakeServer()
	srv.listenErr = errors.New("port busy")

	sup := suture.New("test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewHTTPServerService(srv, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	awaitStart(t, srv)
	awaitStart(t, srv)
	cancel()
	<-errCh

	if srv.listens.Load() < 2 {
		t.Errorf("listen attempts = %d, want a restart", srv.listens.Load())
	}
}

func TestHTTPServerService_RealServer(t *testing.T) {
	t.Parallel()
	server := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	cancel, errCh := serveAsync(NewHTTPServerService(server, time.Second))

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
