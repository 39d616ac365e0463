// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/models"
	"github.com/tomtom215/aura/internal/validation"
)

// maxBodyBytes bounds request bodies. The admin upsert is the largest.
const maxBodyBytes = 4 << 20

// startKey carries the time the router first saw the request.
type startKey struct{}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeEnvelope(w, r, status, models.APIResponse{
		Success: true,
		Data:    data,
		Meta:    newMeta(r),
	})
}

// respondError writes an error envelope. err, when non-nil, is logged with
// the request's context but never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Err(err).Str("code", code).Int("status", status).Msg("API error")
	}
	writeEnvelope(w, r, status, models.APIResponse{
		Success: false,
		Error:   &models.APIError{Code: code, Message: message},
		Meta:    newMeta(r),
	})
}

// respondValidation writes a 400 with per-field details.
func respondValidation(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	writeEnvelope(w, r, http.StatusBadRequest, models.APIResponse{
		Success: false,
		Error:   verr.ToAPIError(),
		Meta:    newMeta(r),
	})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, resp models.APIResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func newMeta(r *http.Request) models.Meta {
	meta := models.Meta{
		Timestamp: time.Now().UTC(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if start, ok := r.Context().Value(startKey{}).(time.Time); ok {
		meta.QueryTimeMS = time.Since(start).Milliseconds()
	}
	return meta
}

// errBodyTooLarge and errEmptyBody are reported as BAD_REQUEST.
var (
	errBodyTooLarge = errors.New("request body too large")
	errEmptyBody    = errors.New("request body is empty")
)

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return errEmptyBody
		default:
			return fmt.Errorf("malformed JSON: %s", sanitizeLogValue(err.Error()))
		}
	}
	return nil
}

// decodeAndValidate decodes the body into v and validates its struct tags.
// It writes the error response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeJSON(w, r, v); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		respondValidation(w, r, verr)
		return false
	}
	return true
}

// sanitizeLogValue replaces control characters so client-supplied text
// cannot forge log lines or response fields.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c < 0x20 || c == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", c)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
