// Copyright (c) 2026 HKSD Tech. All rights reserved.

package sms

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestSpecialEncode covers the gateway's RFC 3986 encoding variant.

Plain QueryEscape output differs in exactly three places: space, asterisk,
and tilde. A drift here invalidates every signature.
*/
func TestSpecialEncode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "SendSms", "SendSms"},
		{"space_is_percent20", "a b", "a%20b"},
		{"asterisk_escaped", "a*b", "a%2Ab"},
		{"tilde_untouched", "a~b", "a~b"},
		{"slash", "/", "%2F"},
		{"template_param", `{"code":"123456"}`, "%7B%22code%22%3A%22123456%22%7D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, specialEncode(tt.input))
		})
	}
}

/*
TestSign verifies determinism and secret sensitivity of the RPC signature.
*/
func TestSign(t *testing.T) {
	params := map[string]string{
		"Action":           "SendSms",
		"AccessKeyId":      "testid",
		"SignatureMethod":  "HMAC-SHA1",
		"SignatureNonce":   "fixed-nonce",
		"SignatureVersion": "1.0",
		"Timestamp":        "2026-08-28T04:00:00Z",
	}

	sender := NewAliyunSender("testid", "testsecret", "HKSD", "SMS_0001")

	// Same input signs identically regardless of map iteration order.
	first := sender.sign(params)
	second := sender.sign(params)
	assert.Equal(t, first, second)

	// The output is base64 of a 20-byte SHA1 MAC.
	raw, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, 20)

	// Any parameter change or secret change yields a different signature.
	other := NewAliyunSender("testid", "othersecret", "HKSD", "SMS_0001")
	assert.NotEqual(t, first, other.sign(params))

	params["SignatureNonce"] = "another-nonce"
	assert.NotEqual(t, first, sender.sign(params))
}

/*
TestNonce produces distinct values per call.
*/
func TestNonce(t *testing.T) {
	seen := make(map[string]bool, 50)
	for i := 0; i < 50; i++ {
		n := nonce()
		assert.NotEmpty(t, n)
		assert.False(t, seen[n])
		seen[n] = true
	}
}

/*
TestLogSender_MasksPhone logs the code in clear but never the full phone.
*/
func TestLogSender_MasksPhone(t *testing.T) {
	var buffer bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buffer, nil)))

	err := sender.SendCode(context.Background(), "13812345678", "654321")
	require.NoError(t, err)

	logged := buffer.String()
	assert.Contains(t, logged, "654321")
	assert.Contains(t, logged, "138****5678")
	assert.NotContains(t, logged, "13812345678")
}
