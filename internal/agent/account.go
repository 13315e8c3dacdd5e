// Copyright (c) 2026 HKSD Tech. All rights reserved.

/*
Package agent implements the hierarchical distributor account system.

Agents form a tree rooted at the admin account. Each role occupies a fixed
level (admin at the top, agent4 at the bottom) and an account may only create
direct children exactly one level below its own. The parent link is set at
creation and never changes.

# Architecture

This layer is the "Truth" of the agent side. Entities defined here have no
transport dependencies; role rules live in the platform sec package so the
token layer and this service agree on them.
*/
package agent

import (
	"time"

	"github.com/hksd-tech/hksd-api/internal/platform/sec"
)

// # Domain Entities

// Account statuses. Accounts are disabled, never deleted, so the tree and
// the audit trail keep their references. A non-active account authenticates
// for nothing and cannot act as a parent.
const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
)

// Account represents one node in the agent tree.
type Account struct {
	ID           int64     `json:"id"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Name         string    `json:"name"`
	Role         sec.Role  `json:"role"`
	Status       string    `json:"status"`
	ParentID     *int64    `json:"parent_id,omitempty"`
	RealName     string    `json:"real_name,omitempty"`
	IDNumber     string    `json:"-"` // National ID numbers never leave the service.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Active reports whether the account may authenticate and act.
func (a *Account) Active() bool {
	return a.Status == AccountStatusActive
}

// Order statuses.
const (
	OrderStatusCreated = "created"
)

// Order is a purchase recorded by an agent.
type Order struct {
	ID        int64     `json:"id"`
	OrderNo   string    `json:"order_no"`
	AgentID   int64     `json:"agent_id"`
	Title     string    `json:"title"`
	Amount    string    `json:"amount"` // Fixed-point decimal carried as a string.
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Field names for validation and identity mapping in the agent domain.
const (
	FieldPhone       = "phone"
	FieldPassword    = "password"
	FieldNewPassword = "new_password"
	FieldName        = "name"
	FieldRole        = "role"
	FieldCode        = "code"
	FieldRealName    = "real_name"
	FieldIDNumber    = "id_number"
	FieldTitle       = "title"
	FieldAmount      = "amount"
	FieldToken       = "token"
	FieldAccount     = "account"
	FieldMessage     = "message"
	FieldExpiresIn   = "expires_in"
)
