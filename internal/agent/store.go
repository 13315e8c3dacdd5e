// Copyright (c) 2026 HKSD Tech. All rights reserved.

package agent

import (
	"context"

	"github.com/hksd-tech/hksd-api/pkg/pagination"
)

// # Account Data Access

// AccountStore defines the data access contract for agent accounts.
type AccountStore interface {

	/*
		Create persists a new account row and assigns its ID.

		A unique index on phone enforces one account per number; the database
		decides concurrent duplicate registrations.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: apperr.Conflict on duplicate phone, or persistence failures
	*/
	Create(context context.Context, account *Account) error

	/*
		FindByPhone returns the account with the given phone number.

		Parameters:
		  - context: context.Context
		  - phone: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByPhone(context context.Context, phone string) (*Account, error)

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByID(context context.Context, id int64) (*Account, error)

	/*
		UpdatePassword replaces only the account's password hash.

		Parameters:
		  - context: context.Context
		  - accountID: int64
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, accountID int64, newHash string) error

	/*
		ListChildren returns a page of direct children of the parent, newest first.

		Parameters:
		  - context: context.Context
		  - parentID: int64
		  - params: pagination.Params

		Returns:
		  - []Account: Page of children
		  - int: Total child count for pagination metadata
		  - error: Retrieval failures
	*/
	ListChildren(context context.Context, parentID int64, params pagination.Params) ([]Account, int, error)

	/*
		CountAll returns the total number of agent accounts.

		Used by the bootstrap seeder to detect an empty tree.

		Parameters:
		  - context: context.Context

		Returns:
		  - int: Account count
		  - error: Retrieval failures
	*/
	CountAll(context context.Context) (int, error)
}

// # Order Data Access

// OrderStore defines the data access contract for agent orders.
type OrderStore interface {

	/*
		Create persists a new order row and assigns its ID.

		Parameters:
		  - context: context.Context
		  - order: *Order

		Returns:
		  - error: apperr.Conflict on duplicate order number, or persistence failures
	*/
	Create(context context.Context, order *Order) error

	/*
		ListByAgent returns a page of the agent's orders, newest first.

		Parameters:
		  - context: context.Context
		  - agentID: int64
		  - params: pagination.Params

		Returns:
		  - []Order: Page of orders
		  - int: Total order count for pagination metadata
		  - error: Retrieval failures
	*/
	ListByAgent(context context.Context, agentID int64, params pagination.Params) ([]Order, int, error)
}

// # System Configuration Access

// ConfigStore is a small key-value contract over system.app_config.
//
// It records one-time system facts, such as the bootstrap seeding marker.
type ConfigStore interface {

	/*
		Get returns the value stored under key.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - string: Stored value
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	Get(context context.Context, key string) (string, error)

	/*
		Set stores value under key, overwriting any previous value.

		Parameters:
		  - context: context.Context
		  - key: string
		  - value: string

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, key, value string) error
}
