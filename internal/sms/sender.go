// Copyright (c) 2026 HKSD Tech. All rights reserved.

/*
Package sms delivers verification codes to mobile subscribers.

Two implementations exist:

  - AliyunSender: signed calls against the Aliyun Dysms gateway.
  - LogSender: logs the code instead of sending it, for development.

Both satisfy the Sender contract defined by the verification package. The
choice happens once at wiring time based on whether gateway credentials are
configured.
*/
package sms

import (
	"context"
	"log/slog"

	"github.com/hksd-tech/hksd-api/pkg/phone"
)

// # Development Sender

// LogSender writes the code to the structured log instead of sending an SMS.
//
// The code itself is logged in clear so a developer can complete flows
// against a local stack. Never wire this in production.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendCode logs the code and always succeeds.
func (sender *LogSender) SendCode(ctx context.Context, phoneNumber, code string) error {
	sender.logger.InfoContext(ctx, "sms_code_logged_not_sent",
		slog.String("phone", phone.Mask(phoneNumber)),
		slog.String("code", code),
	)
	return nil
}
