// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package validation checks request bodies against their validate tags with
// go-playground/validator and turns the failures into API error bodies.
//
//	type FeedRequest struct {
//	    Lat   float64 `json:"lat" validate:"latitude"`
//	    Count int     `json:"count" validate:"omitempty,min=1,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondValidation(w, r, verr)
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/aura/internal/models"
)

// CodeValidation is the API error code for rejected request bodies.
const CodeValidation = "VALIDATION_ERROR"

// FieldError is one rejected field, named as it appears on the wire.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   any
	Message string
}

// RequestValidationError collects every rejected field of one request.
type RequestValidationError struct {
	Fields []FieldError
}

func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// ToAPIError renders the failures as a response error. A lone failure puts
// its field under details; several are listed under details.fields.
func (ve *RequestValidationError) ToAPIError() *models.APIError {
	apiErr := &models.APIError{Code: CodeValidation, Message: "Validation failed"}

	switch len(ve.Fields) {
	case 0:
	case 1:
		f := ve.Fields[0]
		apiErr.Message = f.Message
		apiErr.Details = map[string]any{"field": f.Field, "tag": f.Tag, "value": f.Value}
	default:
		fields := make([]map[string]any, len(ve.Fields))
		msgs := make([]string, len(ve.Fields))
		for i, f := range ve.Fields {
			fields[i] = map[string]any{"field": f.Field, "tag": f.Tag, "message": f.Message}
			msgs[i] = f.Field + ": " + f.Message
		}
		apiErr.Message = strings.Join(msgs, "; ")
		apiErr.Details = map[string]any{"fields": fields}
	}
	return apiErr
}

var (
	instance     *validator.Validate
	instanceOnce sync.Once
)

// GetValidator returns the shared validator. It caches struct metadata, so
// one instance serves the whole process.
func GetValidator() *validator.Validate {
	instanceOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(wireName)
		//nolint:errcheck // only fails for an empty tag
		v.RegisterValidation("notblank", notBlank)
		instance = v
	})
	return instance
}

// wireName reports a field by its JSON key, or its Go name when it has none.
func wireName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	return f.Kind() != reflect.String || strings.TrimSpace(f.String()) != ""
}

// ValidateStruct returns nil when s satisfies its tags.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := &RequestValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	name, p := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "notblank":
		return name + " must not be blank"
	case "latitude":
		return name + " must be a valid latitude (-90 to 90)"
	case "longitude":
		return name + " must be a valid longitude (-180 to 180)"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, p)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, p)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", name, p)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", name, p)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", name, p)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", name, p, unitOf(fe.Kind()))
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", name, p, unitOf(fe.Kind()))
	}
	return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
}

// unitOf words min/max bounds: characters for strings, items for collections.
func unitOf(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}
