// Copyright (c) 2026 HKSD Tech. All rights reserved.

package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hksd-tech/hksd-api/internal/platform/dberr"
)

// # Postgres Store

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the code Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Insert persists a new code row into system.verification_code.

Parameters:
  - context: context.Context
  - code: *Code

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (store *PostgresStore) Insert(context context.Context, code *Code) error {
	const query = `
		INSERT INTO system.verification_code (
			domain, phone, purpose, code, used, expiresat, createdat
		) VALUES ($1, $2, $3, $4, FALSE, $5, $6)
		RETURNING id`

	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	if code.ExpiresAt.IsZero() {
		code.ExpiresAt = code.CreatedAt.Add(CodeTTL)
	}

	err := store.pool.QueryRow(context, query,
		code.Domain,
		code.Phone,
		code.Purpose,
		code.Code,
		code.ExpiresAt,
		code.CreatedAt,
	).Scan(&code.ID)

	if err != nil {
		return fmt.Errorf("verification_store_insert_failed: %w", err)
	}

	return nil
}

/*
FindConsumable retrieves the newest matching unused, unexpired code.

Description: Scoped lookup by domain, phone, purpose, and presented code value.
Expiry is evaluated against the database clock so all instances agree.

Parameters:
  - context: context.Context
  - scope: Scope
  - presented: string

Returns:
  - *Code: Hydrated row
  - error: dberr.ErrNotFound or execution errors
*/
func (store *PostgresStore) FindConsumable(context context.Context, scope Scope, presented string) (*Code, error) {
	const query = `
		SELECT id, domain, phone, purpose, code, used, expiresat, createdat
		FROM system.verification_code
		WHERE domain = $1 AND phone = $2 AND purpose = $3 AND code = $4
		  AND used = FALSE AND expiresat > NOW()
		ORDER BY createdat DESC
		LIMIT 1`

	row := &Code{}
	err := store.pool.QueryRow(context, query, scope.Domain, scope.Phone, scope.Purpose, presented).Scan(
		&row.ID,
		&row.Domain,
		&row.Phone,
		&row.Purpose,
		&row.Code,
		&row.Used,
		&row.ExpiresAt,
		&row.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("verification_store_find_failed: %w", err)
	}

	return row, nil
}

/*
Consume flips the code to used, but only if it is still unused.

Description: The WHERE used = FALSE condition makes concurrent consumption
a race the database decides; exactly one caller gets a row count of 1.

Parameters:
  - context: context.Context
  - codeID: int64

Returns:
  - bool: true if this call won the flip
  - error: Execution errors
*/
func (store *PostgresStore) Consume(context context.Context, codeID int64) (bool, error) {
	const query = `
		UPDATE system.verification_code
		SET used = TRUE
		WHERE id = $1 AND used = FALSE`

	tag, err := store.pool.Exec(context, query, codeID)
	if err != nil {
		return false, fmt.Errorf("verification_store_consume_failed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

/*
RecentlyIssued checks for any issuance to the phone inside the window.

Description: The resend guard spans domains and purposes. A member login code
sent 30 seconds ago blocks an agent registration code for the same phone.

Parameters:
  - context: context.Context
  - phone: string
  - window: time.Duration

Returns:
  - bool: true when a recent row exists
  - error: Execution errors
*/
func (store *PostgresStore) RecentlyIssued(context context.Context, phone string, window time.Duration) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM system.verification_code
			WHERE phone = $1 AND createdat > NOW() - make_interval(secs => $2)
		)`

	var exists bool
	err := store.pool.QueryRow(context, query, phone, window.Seconds()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("verification_store_recent_check_failed: %w", err)
	}

	return exists, nil
}
