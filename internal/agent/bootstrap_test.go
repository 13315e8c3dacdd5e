// Copyright (c) 2026 HKSD Tech. All rights reserved.

package agent_test

import (
	"context"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hksd-tech/hksd-api/internal/agent"
	"github.com/hksd-tech/hksd-api/internal/platform/dberr"
	"github.com/hksd-tech/hksd-api/internal/platform/sec"
)

// fakeConfigStore is an in-memory [agent.ConfigStore].
type fakeConfigStore struct {
	values map[string]string
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{values: make(map[string]string)}
}

func (s *fakeConfigStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", dberr.ErrNotFound
	}
	return value, nil
}

func (s *fakeConfigStore) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func bootstrapLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

/*
TestBootstrap_SeedsRootAdmin provisions the root on an empty tree.
*/
func TestBootstrap_SeedsRootAdmin(t *testing.T) {
	accounts := newFakeAccountStore()
	config := newFakeConfigStore()

	err := agent.Bootstrap(context.Background(), accounts, config, "+86 138 1234 5678", "admin-password", bootstrapLogger())
	require.NoError(t, err)

	// The phone is normalized before storage.
	root, err := accounts.FindByPhone(context.Background(), "13812345678")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, root.Role)
	assert.Equal(t, agent.AccountStatusActive, root.Status)
	assert.Nil(t, root.ParentID)
	assert.True(t, sec.CheckPasswordHash("admin-password", root.PasswordHash))

	// The marker records the seeded account.
	marker, err := config.Get(context.Background(), "agents.root_admin_id")
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(root.ID, 10), marker)
}

/*
TestBootstrap_SecondRunIsNoop leaves the tree untouched on restart.
*/
func TestBootstrap_SecondRunIsNoop(t *testing.T) {
	accounts := newFakeAccountStore()
	config := newFakeConfigStore()

	require.NoError(t, agent.Bootstrap(context.Background(), accounts, config, "13812345678", "admin-password", bootstrapLogger()))
	require.NoError(t, agent.Bootstrap(context.Background(), accounts, config, "13812345678", "admin-password", bootstrapLogger()))

	total, err := accounts.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

/*
TestBootstrap_BackfillsMarker adopts a populated tree without reseeding.
*/
func TestBootstrap_BackfillsMarker(t *testing.T) {
	accounts := newFakeAccountStore()
	config := newFakeConfigStore()
	accounts.seed(&agent.Account{Phone: "13800000001", Role: sec.RoleAdmin})

	err := agent.Bootstrap(context.Background(), accounts, config, "", "", bootstrapLogger())
	require.NoError(t, err)

	marker, err := config.Get(context.Background(), "agents.root_admin_id")
	require.NoError(t, err)
	assert.Equal(t, "preexisting", marker)

	total, _ := accounts.CountAll(context.Background())
	assert.Equal(t, 1, total)
}

/*
TestBootstrap_EmptyTreeWithoutCredentials is a hard startup error.
*/
func TestBootstrap_EmptyTreeWithoutCredentials(t *testing.T) {
	accounts := newFakeAccountStore()
	config := newFakeConfigStore()

	err := agent.Bootstrap(context.Background(), accounts, config, "", "", bootstrapLogger())
	assert.Error(t, err)
}
