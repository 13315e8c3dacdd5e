// Copyright (c) 2026 HKSD Tech. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, token signing, the
// role hierarchy) from the domain logic. It acts as an infrastructure service
// injected into the application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Domains a session token can belong to. A token minted for one caller-facing
// domain never authorizes operations in the other.
const (
	DomainMember = "member"
	DomainAgent  = "agent"
)

// SessionClaims is the payload embedded inside a session token.
//
// # Why custom claims?
//
// By embedding the account ID, phone, role, and parent link directly inside
// the token, protected handlers reconstruct the caller context WITHOUT
// querying the database on every request. Sessions are fully stateless: there
// is no server-side session table, and rotating the signing secret is the
// only way to revoke outstanding tokens.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the token small.
	AccountID int64  `json:"uid"`
	Phone     string `json:"phn"`
	Domain    string `json:"dom"`
	Role      string `json:"rol,omitempty"`
	ParentID  *int64 `json:"pid,omitempty"`
}

// Identity is the claim set a domain service hands to the issuer.
type Identity struct {
	AccountID int64
	Phone     string
	Domain    string
	Role      string
	ParentID  *int64
}

// TokenService issues and verifies session tokens using HS256 with a
// server-held symmetric secret.
type TokenService struct {
	secret []byte
	issuer string
}

// minSecretLength rejects secrets too short to resist brute force.
const minSecretLength = 16

// NewTokenService creates a new TokenService from the configured secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("sec: session secret must be at least %d bytes", minSecretLength)
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// Issue creates a signed session token for the given identity.
func (service *TokenService) Issue(identity Identity, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", identity.AccountID),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		AccountID: identity.AccountID,
		Phone:     identity.Phone,
		Domain:    identity.Domain,
		Role:      identity.Role,
		ParentID:  identity.ParentID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a session token string.
func (service *TokenService) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	return claims, nil
}
