// Copyright (c) 2026 HKSD Tech. All rights reserved.

package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hksd-tech/hksd-api/internal/platform/dberr"
	"github.com/hksd-tech/hksd-api/internal/platform/sec"
	"github.com/hksd-tech/hksd-api/pkg/phone"
)

// bootstrapMarkerKey records that the root admin has been seeded.
const bootstrapMarkerKey = "agents.root_admin_id"

// # Startup Seeding

/*
Bootstrap seeds the root admin account on an empty tree.

Description: Runs once at startup, before the server accepts traffic. The
marker in system.app_config plus the account count make re-runs no-ops, so
rolling restarts and multi-instance deploys are safe. No admin credentials
configured on an empty tree is a hard startup error; a tree with no root is
unusable.

Parameters:
  - context: context.Context
  - accounts: AccountStore
  - config: ConfigStore
  - adminPhone: string (raw, normalized here)
  - adminPassword: string
  - logger: *slog.Logger

Returns:
  - error: Seeding failures
*/
func Bootstrap(context context.Context, accounts AccountStore, config ConfigStore, adminPhone, adminPassword string, logger *slog.Logger) error {

	// Marker check first: the common restart path costs one SELECT.
	if _, err := config.Get(context, bootstrapMarkerKey); err == nil {
		return nil
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return fmt.Errorf("agent_bootstrap_marker_check_failed: %w", err)
	}

	// A populated tree without a marker means the database predates the
	// marker scheme. Backfill the marker and leave the data alone.
	total, err := accounts.CountAll(context)
	if err != nil {
		return fmt.Errorf("agent_bootstrap_count_failed: %w", err)
	}
	if total > 0 {
		if err := config.Set(context, bootstrapMarkerKey, "preexisting"); err != nil {
			return fmt.Errorf("agent_bootstrap_marker_backfill_failed: %w", err)
		}
		return nil
	}

	if adminPhone == "" || adminPassword == "" {
		return errors.New("agent_bootstrap: empty agent tree and no ADMIN_PHONE/ADMIN_PASSWORD configured")
	}

	hashedPassword, err := sec.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("agent_bootstrap_hash_failed: %w", err)
	}

	root := &Account{
		Phone:        phone.Normalize(adminPhone),
		PasswordHash: hashedPassword,
		Name:         "Administrator",
		Role:         sec.RoleAdmin,
		Status:       AccountStatusActive,
	}

	if err := accounts.Create(context, root); err != nil {
		// A concurrent instance may have seeded first; its marker write
		// settles the race on the next restart.
		return fmt.Errorf("agent_bootstrap_create_failed: %w", err)
	}

	if err := config.Set(context, bootstrapMarkerKey, strconv.FormatInt(root.ID, 10)); err != nil {
		return fmt.Errorf("agent_bootstrap_marker_write_failed: %w", err)
	}

	logger.Info("root admin seeded",
		slog.String("phone", phone.Mask(root.Phone)),
		slog.Int64("account_id", root.ID),
	)

	return nil
}
