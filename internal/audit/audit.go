// Copyright (c) 2026 HKSD Tech. All rights reserved.

/*
Package audit records security-relevant actions into an append-only log.

Audit writes are fire-and-forget at the call site: a failed write must never
fail the business operation it describes. The [Recorder] is the single place
where that swallow-and-log decision lives; services just call Record and
move on.
*/
package audit

import (
	"context"
	"log/slog"
	"time"
)

// # Domain Entities

// Well-known action names recorded in the audit log.
const (
	ActionLogin         = "login"
	ActionLoginCode     = "login_code"
	ActionRegister      = "register"
	ActionResetPassword = "reset_password"
	ActionCreateChild   = "create_child"
	ActionCreateOrder   = "create_order"
	ActionVerifyID      = "verify_id"
)

// Entry is one row in the append-only audit log.
type Entry struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	AccountID *int64    `json:"account_id,omitempty"`
	Phone     string    `json:"phone"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// # Data Access

// Store defines the persistence contract for audit entries.
type Store interface {

	/*
		Insert appends one entry to the log.

		Parameters:
		  - context: context.Context
		  - entry: *Entry

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, entry *Entry) error

	/*
		ListRecent returns the newest entries for an account, bounded by limit.

		Parameters:
		  - context: context.Context
		  - domain: string
		  - accountID: int64
		  - limit: int

		Returns:
		  - []Entry: Newest-first slice
		  - error: Retrieval failures
	*/
	ListRecent(context context.Context, domain string, accountID int64, limit int) ([]Entry, error)
}

// # Recorder

// Recorder is the fire-and-forget boundary for audit writes.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder constructs a [Recorder].
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

/*
Record appends an entry, swallowing any storage error.

Description: The only trace of a failed audit write is a structured log
line. The calling operation proceeds regardless.

Parameters:
  - context: context.Context
  - entry: Entry
*/
func (recorder *Recorder) Record(context context.Context, entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := recorder.store.Insert(context, &entry); err != nil {
		recorder.logger.ErrorContext(context, "audit_write_failed",
			slog.String("action", entry.Action),
			slog.String("domain", entry.Domain),
			slog.String("error", err.Error()),
		)
	}
}

// List returns the newest entries for an account.
func (recorder *Recorder) List(context context.Context, domain string, accountID int64, limit int) ([]Entry, error) {
	return recorder.store.ListRecent(context, domain, accountID, limit)
}
