// Copyright (c) 2026 HKSD Tech. All rights reserved.

// Package phone normalizes and masks mobile phone numbers.
//
// # Overview
//
// Phone numbers arrive from mobile clients in messy shapes: surrounding
// whitespace, full-width digits typed through an IME, or a leading +86
// country prefix. Normalize folds all of those into the canonical 11-digit
// domestic form before any validation or storage happens, so that the same
// subscriber always maps to the same account row.
package phone

import (
	"strings"

	"golang.org/x/text/width"
)

// Normalize returns the canonical 11-digit domestic form of a raw phone input.
//
// # Steps
//  1. Trim surrounding whitespace.
//  2. Fold full-width digits (１３８...) into their ASCII equivalents.
//  3. Drop spaces and dashes used as visual separators.
//  4. Strip a leading "+86" or "86" country prefix.
//
// Normalize does not validate. Feed the result to the validate package.
func Normalize(raw string) string {
	folded := width.Narrow.String(strings.TrimSpace(raw))

	var builder strings.Builder
	builder.Grow(len(folded))
	for _, r := range folded {
		if r == ' ' || r == '-' {
			continue
		}
		builder.WriteRune(r)
	}
	normalized := builder.String()

	// Country prefix: "+8613812345678" and "8613812345678" both mean
	// "13812345678".
	if strings.HasPrefix(normalized, "+86") {
		normalized = normalized[3:]
	} else if strings.HasPrefix(normalized, "86") && len(normalized) == 13 {
		normalized = normalized[2:]
	}

	return normalized
}

// IsDigits reports whether s is non-empty and consists only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Mask hides the middle of a phone number for logs and audit records.
//
// "13812345678" becomes "138****5678". Inputs shorter than 8 characters or
// containing non-digits are masked entirely.
func Mask(phone string) string {
	if len(phone) < 8 || !IsDigits(phone) {
		return strings.Repeat("*", len(phone))
	}
	return phone[:3] + strings.Repeat("*", len(phone)-7) + phone[len(phone)-4:]
}
