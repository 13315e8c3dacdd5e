// Copyright (c) 2026 HKSD Tech. All rights reserved.

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Malformed input is rejected here before any store access. This package is
// used exclusively in the HTTP layer; services only operate on semantically
// valid data.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hksd-tech/hksd-api/internal/platform/apperr"
)

var (
	// phoneRegex matches an 11-digit domestic mobile number. Inputs must be
	// normalized (country prefix stripped) before validation.
	phoneRegex = regexp.MustCompile(`^1[3-9]\d{9}$`)
	// codeRegex matches a 6-digit numeric verification code.
	codeRegex = regexp.MustCompile(`^\d{6}$`)
	// nationalIDRegex matches the 18-character resident ID shape. The
	// checksum digit is verified separately by the identity package.
	nationalIDRegex = regexp.MustCompile(`^[1-9]\d{5}(18|19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d{3}[\dXx]$`)
	// amountRegex matches a non-negative fixed-point amount with at most
	// two fraction digits.
	amountRegex = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Phone fails if the value is not a normalized 11-digit domestic mobile number.
func (v *Validator) Phone(field, value string) *Validator {
	if !phoneRegex.MatchString(value) {
		v.add(field, "Must be a valid mobile phone number")
	}
	return v
}

// Code fails if the value is not a 6-digit numeric verification code.
func (v *Validator) Code(field, value string) *Validator {
	if !codeRegex.MatchString(value) {
		v.add(field, "Must be a 6-digit numeric code")
	}
	return v
}

// NationalID fails if the value does not have the 18-character resident
// ID-number shape (region, birth date, sequence, check character).
func (v *Validator) NationalID(field, value string) *Validator {
	if !nationalIDRegex.MatchString(value) {
		v.add(field, "Must be a valid 18-character ID number")
	}
	return v
}

// Amount fails if the value is not a non-negative fixed-point amount with at
// most two fraction digits.
func (v *Validator) Amount(field, value string) *Validator {
	if !amountRegex.MatchString(value) {
		v.add(field, "Must be a non-negative amount")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("amount", amount < 0, "Must not be negative")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method. Call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
