// Copyright (c) 2026 HKSD Tech. All rights reserved.

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hksd-tech/hksd-api/internal/platform/ctxutil"
	"github.com/hksd-tech/hksd-api/internal/platform/middleware"
	"github.com/hksd-tech/hksd-api/internal/platform/sec"
)

// fakeVerifier accepts exactly one token string.
type fakeVerifier struct {
	token  string
	claims *sec.SessionClaims
}

func (v *fakeVerifier) VerifyToken(tokenStr string) (*sec.SessionClaims, error) {
	if tokenStr == v.token {
		return v.claims, nil
	}
	return nil, errors.New("bad token")
}

func agentVerifier() *fakeVerifier {
	return &fakeVerifier{
		token: "good-token",
		claims: &sec.SessionClaims{
			AccountID: 7,
			Phone:     "13812345678",
			Domain:    sec.DomainAgent,
			Role:      string(sec.RoleConsultant),
		},
	}
}

// echoCaller writes 200 and exposes whether claims reached the handler.
func echoCaller(sawClaims *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*sawClaims = ctxutil.GetCaller(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate separates absent, malformed, invalid, and valid credentials.
*/
func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantClaims bool
	}{
		{"no_header_is_anonymous", "", http.StatusOK, false},
		{"valid_bearer", "Bearer good-token", http.StatusOK, true},
		{"lowercase_scheme", "bearer good-token", http.StatusOK, true},
		{"missing_scheme", "good-token", http.StatusForbidden, false},
		{"wrong_scheme", "Basic good-token", http.StatusForbidden, false},
		{"invalid_token", "Bearer tampered-token", http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sawClaims bool
			handler := middleware.Authenticate(agentVerifier())(echoCaller(&sawClaims))

			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantClaims, sawClaims)
			}
		})
	}
}

/*
TestRequireAuth turns anonymous access into a 401.
*/
func TestRequireAuth(t *testing.T) {
	var sawClaims bool
	handler := middleware.RequireAuth(echoCaller(&sawClaims))

	// Anonymous is rejected.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Authenticated passes.
	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(ctxutil.WithCaller(r.Context(), &sec.SessionClaims{AccountID: 1, Domain: sec.DomainMember}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

/*
TestRequireDomain keeps agent and member sessions on their own routes.
*/
func TestRequireDomain(t *testing.T) {
	tests := []struct {
		name       string
		domain     string // Required domain on the route.
		claims     *sec.SessionClaims
		wantStatus int
	}{
		{"anonymous", sec.DomainAgent, nil, http.StatusUnauthorized},
		{"matching_agent", sec.DomainAgent, &sec.SessionClaims{AccountID: 1, Domain: sec.DomainAgent}, http.StatusOK},
		{"member_on_agent_route", sec.DomainAgent, &sec.SessionClaims{AccountID: 1, Domain: sec.DomainMember}, http.StatusForbidden},
		{"agent_on_member_route", sec.DomainMember, &sec.SessionClaims{AccountID: 1, Domain: sec.DomainAgent}, http.StatusForbidden},
		{"matching_member", sec.DomainMember, &sec.SessionClaims{AccountID: 1, Domain: sec.DomainMember}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sawClaims bool
			handler := middleware.RequireDomain(tt.domain)(echoCaller(&sawClaims))

			r := httptest.NewRequest("GET", "/", nil)
			if tt.claims != nil {
				r = r.WithContext(ctxutil.WithCaller(r.Context(), tt.claims))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
