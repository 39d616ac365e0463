// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

//go:build integration

package testinfra

import (
	"context"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// SkipIfNoDocker skips the test when no Docker daemon is reachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable reports whether `docker info` succeeds within 5 seconds.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// CleanupContainer terminates container, logging rather than failing on
// error.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}

// LogContainerOutput dumps the container's logs into the test log when the
// test has failed.
func LogContainerOutput(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if !t.Failed() || container == nil {
		return
	}
	rc, err := container.Logs(ctx)
	if err != nil {
		t.Logf("Warning: failed to read container logs: %v", err)
		return
	}
	defer rc.Close()

	out, err := io.ReadAll(io.LimitReader(rc, 64<<10))
	if err != nil {
		t.Logf("Warning: failed to read container logs: %v", err)
		return
	}
	t.Logf("container logs:\n%s", out)
}
