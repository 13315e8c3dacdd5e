// Copyright (c) 2026 HKSD Tech. All rights reserved.

package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hksd-tech/hksd-api/internal/platform/apperr"
	"github.com/hksd-tech/hksd-api/internal/platform/dberr"
	"github.com/hksd-tech/hksd-api/pkg/phone"
)

// # Contracts & Types

// Sender delivers a code to a phone over SMS.
//
// Defining the contract here keeps the verification service ignorant of the
// gateway dialect; the sms package provides the Aliyun and log-only
// implementations.
type Sender interface {
	// SendCode delivers the code to the phone. A delivery error means the
	// subscriber may never see the code; the caller decides how to surface it.
	SendCode(ctx context.Context, phoneNumber, code string) error
}

// Service orchestrates issuance and consumption of verification codes.
//
// # Review Process
//
// This service gates every passwordless authentication flow. Changes to the
// throttling or consumption logic must be reviewed with the same care as
// password handling.
type Service struct {
	store    Store
	throttle Throttle
	sender   Sender
	logger   *slog.Logger
}

// NewService constructs a new verification [Service].
//
// throttle may be nil, in which case only the SQL resend check applies.
func NewService(store Store, throttle Throttle, sender Sender, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		throttle: throttle,
		sender:   sender,
		logger:   logger,
	}
}

// # Issuance Flow

/*
Issue generates, persists, and delivers a fresh code for the given scope.

Description: Applies the resend throttle (Redis fast path, SQL authoritative),
generates a 6-digit code valid for [CodeTTL], persists it, then hands it to
the SMS gateway.

A delivery failure AFTER the row is persisted surfaces as a 502 dependency
error. The persisted code stays valid, so a client retry that succeeds in
delivery does not strand the subscriber.

Parameters:
  - context: context.Context
  - scope: Scope (normalized phone expected)

Returns:
  - error: RateLimited, DependencyFailure, or storage errors
*/
func (service *Service) Issue(context context.Context, scope Scope) error {

	// Fast path: a held Redis slot means a send happened within the window.
	// The slot is per phone, not per scope; a send from either domain holds
	// it. Throttle errors fail open; the SQL check below still decides.
	if service.throttle != nil {
		acquired, err := service.throttle.TryAcquire(context, scope.Phone, ResendWindow)
		if err != nil {
			service.logger.WarnContext(context, "verification_throttle_unavailable",
				slog.String("error", err.Error()),
			)
		} else if !acquired {
			return apperr.RateLimited(int(ResendWindow.Seconds()))
		}
	}

	// Authoritative resend check against the database.
	recent, err := service.store.RecentlyIssued(context, scope.Phone, ResendWindow)
	if err != nil {
		return fmt.Errorf("verification_service_recent_check_failed: %w", err)
	}
	if recent {
		return apperr.RateLimited(int(ResendWindow.Seconds()))
	}

	// Generate and persist before attempting delivery. If the process dies
	// between these steps the subscriber simply requests a new code.
	codeValue, err := GenerateCode()
	if err != nil {
		return fmt.Errorf("verification_service_generate_failed: %w", err)
	}

	now := time.Now()
	row := &Code{
		Domain:    scope.Domain,
		Phone:     scope.Phone,
		Purpose:   scope.Purpose,
		Code:      codeValue,
		ExpiresAt: now.Add(CodeTTL),
		CreatedAt: now,
	}

	if err := service.store.Insert(context, row); err != nil {
		return fmt.Errorf("verification_service_persist_failed: %w", err)
	}

	if err := service.sender.SendCode(context, scope.Phone, codeValue); err != nil {
		service.logger.ErrorContext(context, "verification_sms_delivery_failed",
			slog.String("domain", scope.Domain),
			slog.String("phone", phone.Mask(scope.Phone)),
			slog.String("error", err.Error()),
		)
		return apperr.DependencyFailure("Failed to deliver verification code", err)
	}

	service.logger.InfoContext(context, "verification_code_issued",
		slog.String("domain", scope.Domain),
		slog.String("phone", phone.Mask(scope.Phone)),
		slog.String("purpose", scope.Purpose),
	)

	return nil
}

// # Consumption Flow

/*
Consume validates and burns a presented code for the given scope.

Description: Locates the newest unused, unexpired code matching the scope and
value, then atomically flips it to used. Wrong value, wrong scope, expiry,
prior use, and a lost concurrent race all collapse into the same generic
invalid-code error so callers cannot probe which codes exist.

Parameters:
  - context: context.Context
  - scope: Scope
  - presented: string

Returns:
  - error: apperr.InvalidCode or storage errors
*/
func (service *Service) Consume(context context.Context, scope Scope, presented string) error {
	row, err := service.store.FindConsumable(context, scope, presented)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			// Wrong value, wrong scope, expired, and already-used all
			// collapse into the same generic answer.
			return apperr.InvalidCode()
		}
		return fmt.Errorf("verification_service_find_failed: %w", err)
	}

	won, err := service.store.Consume(context, row.ID)
	if err != nil {
		return fmt.Errorf("verification_service_consume_failed: %w", err)
	}
	if !won {
		// Another request burned the same code first.
		return apperr.InvalidCode()
	}

	return nil
}
