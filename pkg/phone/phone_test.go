// Copyright (c) 2026 HKSD Tech. All rights reserved.

package phone_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hksd-tech/hksd-api/pkg/phone"
)

/*
TestNormalize folds the messy client-side shapes into the canonical form.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"already_canonical", "13812345678", "13812345678"},
		{"surrounding_whitespace", "  13812345678  ", "13812345678"},
		{"plus_country_prefix", "+8613812345678", "13812345678"},
		{"bare_country_prefix", "8613812345678", "13812345678"},
		{"spaces_inside", "138 1234 5678", "13812345678"},
		{"dashes_inside", "138-1234-5678", "13812345678"},
		{"fullwidth_digits", "１３８１２３４５６７８", "13812345678"},
		{"prefix_plus_spaces", "+86 138 1234 5678", "13812345678"},

		// An 11-digit number starting 86 is NOT a prefixed number.
		{"number_starting_86", "86123456789", "86123456789"},

		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, phone.Normalize(tt.raw))
		})
	}
}

/*
TestIsDigits checks the ASCII-digit predicate.
*/
func TestIsDigits(t *testing.T) {
	assert.True(t, phone.IsDigits("0123456789"))
	assert.False(t, phone.IsDigits(""))
	assert.False(t, phone.IsDigits("123a"))
	assert.False(t, phone.IsDigits("+86138"))
	assert.False(t, phone.IsDigits("１２３"))
}

/*
TestMask hides the middle digits for logs and audit records.
*/
func TestMask(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"standard_mobile", "13812345678", "138****5678"},
		{"eight_digits", "12345678", "123*5678"},
		{"too_short", "1234567", "*******"},
		{"non_digits", "abc12345678", "***********"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, phone.Mask(tt.phone))
		})
	}
}
