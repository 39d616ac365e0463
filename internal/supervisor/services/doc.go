// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package services adapts Aura components to suture.Service.
//
// HTTPServerService turns ListenAndServe/Shutdown into a context-aware Serve.
// PeriodicService runs maintenance work on a ticker; NewCatalogRefreshService
// and NewStoreGCService are its two uses. The event bus consumer implements
// suture.Service itself and needs no wrapper.
package services
