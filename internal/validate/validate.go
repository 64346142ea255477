// SPDX-License-Identifier: MIT

// Package validate provides configuration validation utilities for mapview.
package validate

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"strings"
)

// Error represents a validation error
type Error struct {
	Field   string      // Field name that failed validation
	Value   interface{} // The invalid value
	Message string      // Human-readable error message
}

// Error implements the error interface
func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Validator accumulates validation errors and can produce a ValidationError when invalid.
type Validator struct {
	errors []Error
}

// ValidationError bundles multiple validation errors into a single error value.
type ValidationError struct {
	errors []Error
}

// New creates a new validator
func New() *Validator {
	return &Validator{
		errors: make([]Error, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string, value interface{}) {
	v.errors = append(v.errors, Error{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// IsValid returns true if no errors have been accumulated
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all accumulated validation errors
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err converts the accumulated validation errors into an error value.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}

	copied := make([]Error, len(v.errors))
	copy(copied, v.errors)

	return ValidationError{errors: copied}
}

// Errors returns the individual validation errors making up the validation failure.
func (e ValidationError) Errors() []Error {
	return e.errors
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	if len(e.errors) == 0 {
		return ""
	}

	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}

	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// URL validates an absolute URL string
func (v *Validator) URL(field, value string, allowedSchemes []string) {
	if value == "" {
		v.AddError(field, "URL cannot be empty", value)
		return
	}

	u, err := url.Parse(value)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid URL: %v", err), value)
		return
	}

	if u.Host == "" {
		v.AddError(field, "URL must have a host", value)
		return
	}

	if len(allowedSchemes) > 0 {
		schemeValid := false
		for _, scheme := range allowedSchemes {
			if u.Scheme == scheme {
				schemeValid = true
				break
			}
		}
		if !schemeValid {
			v.AddError(field,
				fmt.Sprintf("unsupported URL scheme %q (allowed: %v)", u.Scheme, allowedSchemes),
				value)
		}
	}
}

// DocumentRef validates a reference to a document served alongside the UI.
// Absolute http(s) URLs and relative, non-escaping paths are accepted.
func (v *Validator) DocumentRef(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "reference cannot be empty", value)
		return
	}

	u, err := url.Parse(value)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid reference: %v", err), value)
		return
	}

	if u.Scheme != "" || u.Host != "" {
		v.URL(field, value, []string{"http", "https"})
		return
	}

	if strings.HasPrefix(u.Path, "/") {
		// root-relative paths resolve against the UI origin
		return
	}

	cleaned := path.Clean(u.Path)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		v.AddError(field, fmt.Sprintf("contains path traversal: %s", value), value)
	}
}

// FloatRange validates that a float is finite and within a specified range (inclusive)
func (v *Validator) FloatRange(field string, value, minVal, maxVal float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		v.AddError(field, "value must be a finite number", value)
		return
	}
	if value < minVal || value > maxVal {
		v.AddError(field,
			fmt.Sprintf("value must be between %g and %g, got %g", minVal, maxVal, value),
			value)
	}
}

// NotEmpty validates that a string is not empty or whitespace-only
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// OneOf validates that a value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field,
		fmt.Sprintf("value must be one of %v, got %q", allowed, value),
		value)
}

// Unique tracks keys that must not repeat within one scope.
type Unique struct {
	v     *Validator
	field string
	seen  map[string]struct{}
}

// Unique returns a tracker reporting duplicates under field.
func (v *Validator) Unique(field string) *Unique {
	return &Unique{v: v, field: field, seen: make(map[string]struct{})}
}

// Add records key and reports whether it was new. A repeated key adds an error.
func (u *Unique) Add(key string) bool {
	if _, ok := u.seen[key]; ok {
		u.v.AddError(u.field, fmt.Sprintf("duplicate value %q", key), key)
		return false
	}
	u.seen[key] = struct{}{}
	return true
}
