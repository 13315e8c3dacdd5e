// Copyright (c) 2026 HKSD Tech. All rights reserved.

/*
Package identity verifies that a real name and a resident ID number belong
together.

Verification happens in two stages:

  - Format: an offline structural check (shape, birth date, checksum digit).
  - Authority: a remote lookup against the government-data gateway confirming
    the name/number pairing.

The [FormatChecker] runs only the first stage and is the development fallback
when no gateway app code is configured. The [RemoteChecker] runs both.
*/
package identity

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/hksd-tech/hksd-api/internal/platform/apperr"
)

// # Contracts & Types

// Checker validates a name/ID-number pairing.
type Checker interface {
	// Verify returns nil when the pairing is confirmed. A structural or
	// authority mismatch yields apperr.IdentityMismatch; gateway trouble
	// yields apperr.DependencyFailure.
	Verify(ctx context.Context, realName, idNumber string) error
}

// # Structural Validation

// idShape matches the 18-character resident ID layout: 6-digit region,
// 8-digit birth date, 3-digit sequence, 1 check character.
var idShape = regexp.MustCompile(`^[1-9]\d{5}(18|19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d{3}[\dXx]$`)

// checksumWeights and checksumMap implement the ISO 7064 MOD 11-2 scheme
// used by resident ID numbers.
var (
	checksumWeights = [17]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}
	checksumMap     = [11]byte{'1', '0', 'X', '9', '8', '7', '6', '5', '4', '3', '2'}
)

// ValidNumber reports whether the ID number is structurally valid: correct
// shape, plausible birth date, and matching checksum digit.
func ValidNumber(idNumber string) bool {
	if !idShape.MatchString(idNumber) {
		return false
	}

	// Birth date must parse and not lie in the future.
	birthDate, err := time.Parse("20060102", idNumber[6:14])
	if err != nil || birthDate.After(time.Now()) {
		return false
	}

	// Checksum over the first 17 digits.
	sum := 0
	for i := 0; i < 17; i++ {
		sum += int(idNumber[i]-'0') * checksumWeights[i]
	}

	expected := checksumMap[sum%11]
	actual := idNumber[17]
	if actual == 'x' {
		actual = 'X'
	}

	return actual == expected
}

// # Format-Only Checker

// FormatChecker validates structure without consulting any authority.
//
// It cannot confirm that the name belongs to the number; it only rejects
// numbers that could not exist. Used in development and as an explicit
// opt-out of the remote gateway.
type FormatChecker struct{}

// NewFormatChecker creates a structure-only checker.
func NewFormatChecker() *FormatChecker {
	return &FormatChecker{}
}

// Verify checks structure only.
func (checker *FormatChecker) Verify(ctx context.Context, realName, idNumber string) error {
	if strings.TrimSpace(realName) == "" {
		return apperr.IdentityMismatch("Name is required for identity verification")
	}
	if !ValidNumber(idNumber) {
		return apperr.IdentityMismatch("ID number is not valid")
	}
	return nil
}
