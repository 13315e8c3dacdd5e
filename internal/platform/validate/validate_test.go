// Copyright (c) 2026 HKSD Tech. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hksd-tech/hksd-api/internal/platform/apperr"
	"github.com/hksd-tech/hksd-api/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "HKSD", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Phone checks the normalized mobile number rule.
*/
func TestValidator_Phone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		isValid bool
	}{
		{"valid_mobile", "13812345678", true},
		{"valid_199_prefix", "19912345678", true},
		{"too_short", "1381234567", false},
		{"too_long", "138123456789", false},
		{"landline_prefix", "02812345678", false},
		{"second_digit_out_of_range", "12812345678", false},
		{"letters", "13812345abc", false},
		{"unstripped_country_code", "+8613812345678", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Phone("phone", tt.phone)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Code checks the 6-digit verification code rule.
*/
func TestValidator_Code(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		isValid bool
	}{
		{"valid", "123456", true},
		{"leading_zero", "012345", true},
		{"too_short", "12345", false},
		{"too_long", "1234567", false},
		{"letters", "12a456", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Code("code", tt.code)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_NationalID checks the 18-character ID shape rule.
*/
func TestValidator_NationalID(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		isValid bool
	}{
		{"valid_shape", "110105194912310021", true},
		{"valid_x_check", "11010519491231002X", true},
		{"lowercase_x", "11010519491231002x", true},
		{"too_short", "11010519491231002", false},
		{"bad_month", "110105194913310021", false},
		{"bad_day", "110105194912320021", false},
		{"leading_zero_region", "010105194912310021", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.NationalID("id_number", tt.number)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Amount checks the fixed-point amount rule.
*/
func TestValidator_Amount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		isValid bool
	}{
		{"integer", "100", true},
		{"one_decimal", "99.5", true},
		{"two_decimals", "0.01", true},
		{"zero", "0", true},
		{"three_decimals", "1.005", false},
		{"negative", "-1", false},
		{"bare_dot", "1.", false},
		{"not_a_number", "abc", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Amount("amount", tt.amount)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_OneOf checks closed-set membership.
*/
func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	v.OneOf("purpose", "login", "login", "register", "reset_password")
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.OneOf("purpose", "delete_everything", "login", "register", "reset_password")
	assert.True(t, v.HasErrors())
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("phone", "13812345678").
		Phone("phone", "13812345678").
		MinLen("password", "longenough", 8).
		MaxLen("name", "HKSD", 100).
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("phone", "").      // Fails
		Code("code", "abc").        // Fails
		MinLen("password", "x", 8). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}

/*
TestRequiredError builds a single-field validation error directly.
*/
func TestRequiredError(t *testing.T) {
	err := validate.RequiredError("code", "Code is required for registration")

	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "code", err.Details[0].Field)
}
