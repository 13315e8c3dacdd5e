// Copyright (c) 2026 HKSD Tech. All rights reserved.

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hksd-tech/hksd-api/pkg/pagination"
)

/*
TestFromRequest verifies query parsing and clamping behavior.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", pagination.DefaultPage, pagination.DefaultLimit},
		{"explicit_values", "?page=3&limit=25", 3, 25},
		{"zero_page", "?page=0", pagination.DefaultPage, pagination.DefaultLimit},
		{"negative_page", "?page=-5", pagination.DefaultPage, pagination.DefaultLimit},
		{"zero_limit", "?limit=0", pagination.DefaultPage, pagination.DefaultLimit},
		{"excessive_limit", "?limit=10000", pagination.DefaultPage, pagination.MaxLimit},
		{"garbage_values", "?page=abc&limit=xyz", pagination.DefaultPage, pagination.DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/list"+tt.query, nil)
			params := pagination.FromRequest(r)

			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
		})
	}
}

/*
TestParams_Offset verifies the SQL OFFSET derivation.
*/
func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 50}.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 0, Limit: 50}.Offset())
	assert.Equal(t, 50, pagination.Params{Page: 2, Limit: 50}.Offset())
	assert.Equal(t, 40, pagination.Params{Page: 5, Limit: 10}.Offset())
}

/*
TestNewMeta verifies total-page rounding.
*/
func TestNewMeta(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		limit      int
		totalPages int
	}{
		{"exact_fit", 100, 50, 2},
		{"partial_last_page", 101, 50, 3},
		{"empty_set", 0, 50, 0},
		{"single_item", 1, 50, 1},
		{"zero_limit_guard", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := pagination.NewMeta(1, tt.limit, tt.total)
			assert.Equal(t, tt.totalPages, meta.TotalPages)
			assert.Equal(t, tt.total, meta.Total)
		})
	}
}
