// Copyright (c) 2026 HKSD Tech. All rights reserved.

package member

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

// NewPostgresStore creates a new PostgreSQL implementation of the member Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const memberColumns = `id, phone, passwordhash, nickname, realname, idnumber, idverified, status, createdat, updatedat`

// scanMember hydrates one member row.
func scanMember(row pgx.Row) (*Member, error) {
	member := &Member{}
	err := row.Scan(
		&member.ID,
		&member.Phone,
		&member.PasswordHash,
		&member.Nickname,
		&member.RealName,
		&member.IDNumber,
		&member.IDVerified,
		&member.Status,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}

/*
Create persists a new member row into members.account.

Description: The unique index on phone turns concurrent duplicate
registrations into a SQLSTATE 23505, which dberr maps to a client-safe
Conflict.

Parameters:
  - context: context.Context
  - member: *Member

Returns:
  - error: apperr.Conflict or execution errors
*/
func (store *PostgresStore) Create(context context.Context, member *Member) error {
	const query = `
		INSERT INTO members.account (
			phone, passwordhash, nickname, realname, idnumber, idverified, status, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	now := time.Now()
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now
	if member.Status == "" {
		member.Status = MemberStatusActive
	}

	err := store.pool.QueryRow(context, query,
		member.Phone,
		member.PasswordHash,
		member.Nickname,
		member.RealName,
		member.IDNumber,
		member.IDVerified,
		member.Status,
		member.CreatedAt,
		member.UpdatedAt,
	).Scan(&member.ID)

	if err != nil {
		return dberr.Wrap(err, "Phone number is already registered")
	}

	return nil
}

/*
FindByPhone retrieves a member by their unique phone number.

Parameters:
  - context: context.Context
  - phone: string

Returns:
  - *Member: Hydrated entity
  - error: dberr.ErrNotFound or execution errors
*/
func (store *PostgresStore) FindByPhone(context context.Context, phone string) (*Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members.account WHERE phone = $1`, memberColumns)

	member, err := scanMember(store.pool.QueryRow(context, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("member_store_find_by_phone_failed: %w", err)
	}

	return member, nil
}

/*
FindByID retrieves a member by their primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Member: Hydrated entity
  - error: dberr.ErrNotFound or execution errors
*/
func (store *PostgresStore) FindByID(context context.Context, id int64) (*Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members.account WHERE id = $1`, memberColumns)

	member, err := scanMember(store.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("member_store_find_by_id_failed: %w", err)
	}

	return member, nil
}

/*
UpdatePassword replaces only the password hash for one member.

Parameters:
  - context: context.Context
  - memberID: int64
  - newHash: string

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) UpdatePassword(context context.Context, memberID int64, newHash string) error {
	const query = `
		UPDATE members.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := store.pool.Exec(context, query, memberID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("member_store_update_password_failed: %w", err)
	}

	return nil
}

/*
AttachIdentity stores the verified identity fields on one member.

Parameters:
  - context: context.Context
  - memberID: int64
  - realName: string
  - idNumber: string

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) AttachIdentity(context context.Context, memberID int64, realName, idNumber string) error {
	const query = `
		UPDATE members.account
		SET realname = $2, idnumber = $3, idverified = TRUE, updatedat = $4
		WHERE id = $1`

	_, err := store.pool.Exec(context, query, memberID, realName, idNumber, time.Now())
	if err != nil {
		return fmt.Errorf("member_store_attach_identity_failed: %w", err)
	}

	return nil
}
