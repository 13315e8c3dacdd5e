// Copyright (c) 2026 HKSD Tech. All rights reserved.

/*
Package verification implements the single-use SMS verification code system.

A code binds four things together: the account domain (member or agent), the
phone number, the purpose it was issued for, and a short expiry window. A code
issued for one scope can never satisfy a challenge in another.

Architecture:

  - Service: Orchestrates issuance (with resend throttling) and consumption.
  - Store: Abstracted SQL persistence; the database decides races.
  - Throttle: Best-effort Redis fast path in front of the SQL resend check.

The conditional UPDATE in [Store.Consume] is the single point that decides
concurrent consumption of the same code: exactly one caller wins.
*/
package verification

import (
	"crypto/rand"
	"math/big"
	"time"
)

// Account domains a verification scope can target.
const (
	DomainMember = "member"
	DomainAgent  = "agent"
)

// Purposes a code can be issued for. A login code cannot complete a
// registration and vice versa.
const (
	PurposeLogin    = "login"
	PurposeRegister = "register"
	PurposeReset    = "reset_password"
)

const (
	// CodeTTL is how long an issued code stays valid.
	CodeTTL = 5 * time.Minute

	// ResendWindow is the minimum gap between two issuances to the same
	// phone, whatever the domain or purpose. Counted from issuance, not
	// delivery.
	ResendWindow = 60 * time.Second
)

// # Domain Entities

// Scope identifies the exact challenge a code was issued for.
type Scope struct {
	Domain  string
	Phone   string
	Purpose string
}

// Code is a persisted verification code row.
type Code struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	Phone     string    `json:"phone"`
	Purpose   string    `json:"purpose"`
	Code      string    `json:"-"` // Never serialized back to clients.
	Used      bool      `json:"used"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the code is past its validity window at the given time.
func (c *Code) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// # Code Generation

// codeSpan covers the 6-digit range [100000, 999999].
var codeSpan = big.NewInt(900000)

// GenerateCode returns a uniformly random 6-digit code as a string.
//
// The first digit is never zero, so the string form always has exactly six
// characters and survives round trips through systems that parse it as an
// integer.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	value := n.Int64() + 100000
	return big.NewInt(value).String(), nil
}

// # Field Identifiers

// Field names used in validation errors across verification endpoints.
const (
	FieldPhone   = "phone"
	FieldCode    = "code"
	FieldPurpose = "purpose"
)
