// Copyright (c) 2026 HKSD Tech. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hksd-tech/hksd-api/internal/platform/sec"
)

const testSecret = "integration-test-secret-0123456789"

/*
TestNewTokenService_SecretLength rejects secrets too short for HS256.
*/
func TestNewTokenService_SecretLength(t *testing.T) {
	_, err := sec.NewTokenService("short", "hksd.app")
	assert.Error(t, err)

	service, err := sec.NewTokenService(testSecret, "hksd.app")
	require.NoError(t, err)
	assert.NotNil(t, service)
}

/*
TestTokenService_RoundTrip issues a token and verifies every claim survives.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewTokenService(testSecret, "hksd.app")
	require.NoError(t, err)

	parentID := int64(7)
	identity := sec.Identity{
		AccountID: 42,
		Phone:     "13812345678",
		Domain:    sec.DomainAgent,
		Role:      string(sec.RoleAgent1),
		ParentID:  &parentID,
	}

	token, err := service.Issue(identity, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "13812345678", claims.Phone)
	assert.Equal(t, sec.DomainAgent, claims.Domain)
	assert.Equal(t, string(sec.RoleAgent1), claims.Role)
	require.NotNil(t, claims.ParentID)
	assert.Equal(t, int64(7), *claims.ParentID)
	assert.Equal(t, "hksd.app", claims.Issuer)
	assert.Equal(t, "42", claims.Subject)
}

/*
TestTokenService_MemberClaims verifies role and parent stay absent for members.
*/
func TestTokenService_MemberClaims(t *testing.T) {
	service, err := sec.NewTokenService(testSecret, "hksd.app")
	require.NoError(t, err)

	token, err := service.Issue(sec.Identity{
		AccountID: 99,
		Phone:     "13900001111",
		Domain:    sec.DomainMember,
	}, time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, sec.DomainMember, claims.Domain)
	assert.Empty(t, claims.Role)
	assert.Nil(t, claims.ParentID)
}

/*
TestTokenService_Expired rejects a token past its expiry.
*/
func TestTokenService_Expired(t *testing.T) {
	service, err := sec.NewTokenService(testSecret, "hksd.app")
	require.NoError(t, err)

	token, err := service.Issue(sec.Identity{
		AccountID: 1,
		Phone:     "13812345678",
		Domain:    sec.DomainMember,
	}, -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_WrongSecret rejects a token signed with a different secret.
*/
func TestTokenService_WrongSecret(t *testing.T) {
	issuerService, err := sec.NewTokenService(testSecret, "hksd.app")
	require.NoError(t, err)

	verifierService, err := sec.NewTokenService("another-secret-entirely-9876543210", "hksd.app")
	require.NoError(t, err)

	token, err := issuerService.Issue(sec.Identity{
		AccountID: 1,
		Phone:     "13812345678",
		Domain:    sec.DomainAgent,
	}, time.Hour)
	require.NoError(t, err)

	_, err = verifierService.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_Garbage rejects strings that are not tokens at all.
*/
func TestTokenService_Garbage(t *testing.T) {
	service, err := sec.NewTokenService(testSecret, "hksd.app")
	require.NoError(t, err)

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		_, err := service.VerifyToken(bad)
		assert.Error(t, err, bad)
	}
}

/*
TestPasswordHash_RoundTrip confirms hashing and verification agree.
*/
func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, sec.CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, sec.CheckPasswordHash("wrong-pass", hash))
	assert.False(t, sec.CheckPasswordHash("s3cret-pass", "not-a-bcrypt-hash"))
}
