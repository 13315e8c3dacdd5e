// Copyright (c) 2026 HKSD Tech. All rights reserved.

package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hksd-tech/hksd-api/internal/platform/dberr"
	"github.com/hksd-tech/hksd-api/pkg/pagination"
)

// # Account Store

// PostgresAccountStore implements the [AccountStore] interface using pgx.
type PostgresAccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore creates a new PostgreSQL implementation of the AccountStore.
func NewAccountStore(pool *pgxpool.Pool) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

const accountColumns = `id, phone, passwordhash, name, role, status, parentid, realname, idnumber, createdat, updatedat`

// scanAccount hydrates one account row.
func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Phone,
		&account.PasswordHash,
		&account.Name,
		&account.Role,
		&account.Status,
		&account.ParentID,
		&account.RealName,
		&account.IDNumber,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

/*
Create persists a new account row into agents.account.

Description: The unique index on phone turns concurrent duplicate
registrations into a SQLSTATE 23505, which dberr maps to a client-safe
Conflict.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: apperr.Conflict or execution errors
*/
func (store *PostgresAccountStore) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO agents.account (
			phone, passwordhash, name, role, status, parentid, realname, idnumber, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	if account.Status == "" {
		account.Status = AccountStatusActive
	}

	err := store.pool.QueryRow(context, query,
		account.Phone,
		account.PasswordHash,
		account.Name,
		account.Role,
		account.Status,
		account.ParentID,
		account.RealName,
		account.IDNumber,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID)

	if err != nil {
		return dberr.Wrap(err, "Phone number is already registered")
	}

	return nil
}

/*
FindByPhone retrieves an account by its unique phone number.

Parameters:
  - context: context.Context
  - phone: string

Returns:
  - *Account: Hydrated entity
  - error: dberr.ErrNotFound or execution errors
*/
func (store *PostgresAccountStore) FindByPhone(context context.Context, phone string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM agents.account WHERE phone = $1`, accountColumns)

	account, err := scanAccount(store.pool.QueryRow(context, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("agent_store_find_by_phone_failed: %w", err)
	}

	return account, nil
}

/*
FindByID retrieves an account by its primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Account: Hydrated entity
  - error: dberr.ErrNotFound or execution errors
*/
func (store *PostgresAccountStore) FindByID(context context.Context, id int64) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM agents.account WHERE id = $1`, accountColumns)

	account, err := scanAccount(store.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("agent_store_find_by_id_failed: %w", err)
	}

	return account, nil
}

/*
UpdatePassword replaces only the password hash for one account.

Parameters:
  - context: context.Context
  - accountID: int64
  - newHash: string

Returns:
  - error: Execution errors
*/
func (store *PostgresAccountStore) UpdatePassword(context context.Context, accountID int64, newHash string) error {
	const query = `
		UPDATE agents.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := store.pool.Exec(context, query, accountID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("agent_store_update_password_failed: %w", err)
	}

	return nil
}

/*
ListChildren returns one page of direct children, newest first, plus the total.

Parameters:
  - context: context.Context
  - parentID: int64
  - params: pagination.Params

Returns:
  - []Account: Page of children
  - int: Total direct-child count
  - error: Execution errors
*/
func (store *PostgresAccountStore) ListChildren(context context.Context, parentID int64, params pagination.Params) ([]Account, int, error) {
	const countQuery = `SELECT COUNT(*) FROM agents.account WHERE parentid = $1`

	var total int
	if err := store.pool.QueryRow(context, countQuery, parentID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("agent_store_count_children_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM agents.account
		WHERE parentid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`, accountColumns)

	rows, err := store.pool.Query(context, query, parentID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("agent_store_list_children_failed: %w", err)
	}
	defer rows.Close()

	children := make([]Account, 0, params.Limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("agent_store_scan_child_failed: %w", err)
		}
		children = append(children, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("agent_store_children_rows_failed: %w", err)
	}

	return children, total, nil
}

/*
CountAll returns the total number of agent accounts.

Parameters:
  - context: context.Context

Returns:
  - int: Account count
  - error: Execution errors
*/
func (store *PostgresAccountStore) CountAll(context context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM agents.account`

	var total int
	if err := store.pool.QueryRow(context, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("agent_store_count_all_failed: %w", err)
	}

	return total, nil
}

// # Order Store

// PostgresOrderStore implements the [OrderStore] interface using pgx.
type PostgresOrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates a new PostgreSQL implementation of the OrderStore.
func NewOrderStore(pool *pgxpool.Pool) *PostgresOrderStore {
	return &PostgresOrderStore{pool: pool}
}

/*
Create persists a new order row into agents.orders.

Description: The unique index on orderno guards against the astronomically
unlikely number collision; a collision surfaces as Conflict and the caller
may simply retry.

Parameters:
  - context: context.Context
  - order: *Order

Returns:
  - error: apperr.Conflict or execution errors
*/
func (store *PostgresOrderStore) Create(context context.Context, order *Order) error {
	const query = `
		INSERT INTO agents.orders (
			orderno, agentid, title, amount, status, createdat
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = OrderStatusCreated
	}

	err := store.pool.QueryRow(context, query,
		order.OrderNo,
		order.AgentID,
		order.Title,
		order.Amount,
		order.Status,
		order.CreatedAt,
	).Scan(&order.ID)

	if err != nil {
		return dberr.Wrap(err, "Order number collision, please retry")
	}

	return nil
}

/*
ListByAgent returns one page of the agent's orders, newest first, plus the total.

Parameters:
  - context: context.Context
  - agentID: int64
  - params: pagination.Params

Returns:
  - []Order: Page of orders
  - int: Total order count
  - error: Execution errors
*/
func (store *PostgresOrderStore) ListByAgent(context context.Context, agentID int64, params pagination.Params) ([]Order, int, error) {
	const countQuery = `SELECT COUNT(*) FROM agents.orders WHERE agentid = $1`

	var total int
	if err := store.pool.QueryRow(context, countQuery, agentID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("agent_store_count_orders_failed: %w", err)
	}

	const query = `
		SELECT id, orderno, agentid, title, amount::text, status, createdat
		FROM agents.orders
		WHERE agentid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := store.pool.Query(context, query, agentID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("agent_store_list_orders_failed: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0, params.Limit)
	for rows.Next() {
		var order Order
		if err := rows.Scan(
			&order.ID,
			&order.OrderNo,
			&order.AgentID,
			&order.Title,
			&order.Amount,
			&order.Status,
			&order.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("agent_store_scan_order_failed: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("agent_store_orders_rows_failed: %w", err)
	}

	return orders, total, nil
}

// # Config Store

// PostgresConfigStore implements the [ConfigStore] interface using pgx.
type PostgresConfigStore struct {
	pool *pgxpool.Pool
}

// NewConfigStore creates a new PostgreSQL implementation of the ConfigStore.
func NewConfigStore(pool *pgxpool.Pool) *PostgresConfigStore {
	return &PostgresConfigStore{pool: pool}
}

/*
Get returns the value stored under key in system.app_config.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: Stored value
  - error: dberr.ErrNotFound or execution errors
*/
func (store *PostgresConfigStore) Get(context context.Context, key string) (string, error) {
	const query = `SELECT value FROM system.app_config WHERE key = $1`

	var value string
	err := store.pool.QueryRow(context, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", dberr.ErrNotFound
		}
		return "", fmt.Errorf("config_store_get_failed: %w", err)
	}

	return value, nil
}

/*
Set stores value under key, overwriting any previous value.

Parameters:
  - context: context.Context
  - key: string
  - value: string

Returns:
  - error: Execution errors
*/
func (store *PostgresConfigStore) Set(context context.Context, key, value string) error {
	const query = `
		INSERT INTO system.app_config (key, value, updatedat)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updatedat = NOW()`

	_, err := store.pool.Exec(context, query, key, value)
	if err != nil {
		return fmt.Errorf("config_store_set_failed: %w", err)
	}

	return nil
}
