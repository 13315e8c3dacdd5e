// Copyright (c) 2026 HKSD Tech. All rights reserved.

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// # Postgres Store

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the audit Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Insert appends one row to system.audit_log.

Parameters:
  - context: context.Context
  - entry: *Entry

Returns:
  - error: Persistence failures
*/
func (store *PostgresStore) Insert(context context.Context, entry *Entry) error {
	const query = `
		INSERT INTO system.audit_log (
			domain, accountid, phone, action, detail, ipaddress, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err := store.pool.QueryRow(context, query,
		entry.Domain,
		entry.AccountID,
		entry.Phone,
		entry.Action,
		entry.Detail,
		entry.IPAddress,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("audit_store_insert_failed: %w", err)
	}

	return nil
}

/*
ListRecent returns the newest rows for an account, newest first. Rows with
no owning account (system entries) are included alongside the account's own.

Parameters:
  - context: context.Context
  - domain: string
  - accountID: int64
  - limit: int

Returns:
  - []Entry: Bounded newest-first slice
  - error: Retrieval failures
*/
func (store *PostgresStore) ListRecent(context context.Context, domain string, accountID int64, limit int) ([]Entry, error) {
	const query = `
		SELECT id, domain, accountid, phone, action, detail, ipaddress, createdat
		FROM system.audit_log
		WHERE domain = $1 AND (accountid = $2 OR accountid IS NULL)
		ORDER BY createdat DESC
		LIMIT $3`

	rows, err := store.pool.Query(context, query, domain, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit_store_list_failed: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.Domain,
			&entry.AccountID,
			&entry.Phone,
			&entry.Action,
			&entry.Detail,
			&entry.IPAddress,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("audit_store_scan_failed: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit_store_rows_failed: %w", err)
	}

	return entries, nil
}
