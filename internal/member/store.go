// Copyright (c) 2026 HKSD Tech. All rights reserved.

package member

import "context"

// # Member Data Access

// Store defines the data access contract for member accounts.
type Store interface {

	/*
		Create persists a new member row and assigns its ID.

		A unique index on phone enforces one account per number; the database
		decides concurrent duplicate registrations.

		Parameters:
		  - context: context.Context
		  - member: *Member

		Returns:
		  - error: apperr.Conflict on duplicate phone, or persistence failures
	*/
	Create(context context.Context, member *Member) error

	/*
		FindByPhone returns the member with the given phone number.

		Parameters:
		  - context: context.Context
		  - phone: string

		Returns:
		  - *Member: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByPhone(context context.Context, phone string) (*Member, error)

	/*
		FindByID returns the member with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Member: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByID(context context.Context, id int64) (*Member, error)

	/*
		UpdatePassword replaces only the member's password hash.

		Parameters:
		  - context: context.Context
		  - memberID: int64
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, memberID int64, newHash string) error

	/*
		AttachIdentity stores the verified real-name identity on the member.

		Parameters:
		  - context: context.Context
		  - memberID: int64
		  - realName: string
		  - idNumber: string

		Returns:
		  - error: Persistence failures
	*/
	AttachIdentity(context context.Context, memberID int64, realName, idNumber string) error
}
