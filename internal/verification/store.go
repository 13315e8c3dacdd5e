// Copyright (c) 2026 HKSD Tech. All rights reserved.

package verification

import (
	"context"
	"time"
)

// # Code Data Access

// Store defines the persistence contract for verification codes.
type Store interface {

	/*
		Insert persists a freshly issued code row.

		Parameters:
		  - context: context.Context
		  - code: *Code

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, code *Code) error

	/*
		FindConsumable returns the newest unused, unexpired code matching
		the scope and the presented code value.

		Parameters:
		  - context: context.Context
		  - scope: Scope
		  - presented: string

		Returns:
		  - *Code: Hydrated row
		  - error: dberr.ErrNotFound when no candidate exists
	*/
	FindConsumable(context context.Context, scope Scope, presented string) (*Code, error)

	/*
		Consume atomically flips a code from unused to used.

		The conditional WHERE clause makes the database the arbiter of
		concurrent consumption: only one caller observes consumed=true.

		Parameters:
		  - context: context.Context
		  - codeID: int64

		Returns:
		  - bool: true if this call performed the flip
		  - error: Persistence failures
	*/
	Consume(context context.Context, codeID int64) (bool, error)

	/*
		RecentlyIssued reports whether any code was issued for the phone
		within the given window, regardless of domain or purpose.

		Parameters:
		  - context: context.Context
		  - phone: string
		  - window: time.Duration

		Returns:
		  - bool: true when a recent issuance exists
		  - error: Persistence failures
	*/
	RecentlyIssued(context context.Context, phone string, window time.Duration) (bool, error)
}

// # Throttle Fast Path

// Throttle is a best-effort guard in front of the SQL resend check.
//
// Implementations may fail open: a throttle error never blocks issuance,
// it only forfeits the fast path. The SQL check remains authoritative.
type Throttle interface {

	/*
		TryAcquire attempts to claim the resend slot for a phone. The slot
		is shared by both caller domains; a member send blocks an agent
		send to the same number.

		Parameters:
		  - context: context.Context
		  - phone: string
		  - window: time.Duration

		Returns:
		  - bool: false when the slot is already held (recent send)
		  - error: Backend failures (callers should fail open)
	*/
	TryAcquire(context context.Context, phone string, window time.Duration) (bool, error)
}
