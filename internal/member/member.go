// Copyright (c) 2026 HKSD Tech. All rights reserved.

/*
Package member implements the consumer-facing account system.

Members register themselves with a phone number proven by a verification
code; there is no hierarchy on this side. A member may optionally attach a
verified real-name identity at registration or later.

# Architecture

This layer mirrors the agent package: entity, service, abstract store, and
a pgx-backed implementation, with transport kept in http.go.
*/
package member

import "time"

// # Domain Entities

// Member statuses. A non-active member authenticates for nothing; rows are
// disabled rather than deleted.
const (
	MemberStatusActive   = "active"
	MemberStatusDisabled = "disabled"
)

// Member represents a registered consumer account.
type Member struct {
	ID           int64     `json:"id"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Nickname     string    `json:"nickname,omitempty"`
	RealName     string    `json:"real_name,omitempty"`
	IDNumber     string    `json:"-"` // National ID numbers never leave the service.
	IDVerified   bool      `json:"id_verified"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Active reports whether the member may authenticate.
func (m *Member) Active() bool {
	return m.Status == MemberStatusActive
}

// # Field Identifiers

// Field names for validation and identity mapping in the member domain.
const (
	FieldPhone       = "phone"
	FieldPassword    = "password"
	FieldNewPassword = "new_password"
	FieldNickname    = "nickname"
	FieldCode        = "code"
	FieldPurpose     = "purpose"
	FieldRealName    = "real_name"
	FieldIDNumber    = "id_number"
	FieldToken       = "token"
	FieldAccount     = "account"
	FieldMessage     = "message"
	FieldVerified    = "verified"
	FieldExpiresIn   = "expires_in"
)
