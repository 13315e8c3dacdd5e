// Copyright (c) 2026 HKSD Tech. All rights reserved.

package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hksd-tech/hksd-api/internal/platform/apperr"
	"github.com/hksd-tech/hksd-api/internal/platform/constants"
)

// # Remote Gateway

// RemoteChecker confirms the name/number pairing against the government-data
// gateway using APPCODE authentication.
//
// The structural check still runs first so obviously broken numbers never
// cost a billable gateway call.
type RemoteChecker struct {
	appCode    string
	endpoint   string
	httpClient *http.Client
}

// NewRemoteChecker creates a gateway-backed checker.
func NewRemoteChecker(appCode, endpoint string) *RemoteChecker {
	return &RemoteChecker{
		appCode:  appCode,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: constants.CollaboratorTimeout,
		},
	}
}

// gatewayResponse is the subset of the gateway payload we act on.
//
// Status "01" means the name and number match; "02" means they do not.
// Anything else is a gateway-side problem.
type gatewayResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

const (
	gatewayStatusMatch    = "01"
	gatewayStatusMismatch = "02"
)

/*
Verify confirms the pairing with the remote authority.

Description: Runs the offline structural check, then issues the APPCODE
request within the collaborator timeout. Gateway unreachability or an
unexpected payload maps to a 502; only an explicit mismatch answer maps
to the caller-actionable identity error.

Parameters:
  - ctx: context.Context
  - realName: string
  - idNumber: string

Returns:
  - error: apperr.IdentityMismatch, apperr.DependencyFailure, or nil
*/
func (checker *RemoteChecker) Verify(ctx context.Context, realName, idNumber string) error {
	if !ValidNumber(idNumber) {
		return apperr.IdentityMismatch("ID number is not valid")
	}

	query := url.Values{}
	query.Set("idcard", idNumber)
	query.Set("name", realName)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, checker.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return apperr.DependencyFailure("Identity gateway request could not be built", err)
	}
	request.Header.Set("Authorization", "APPCODE "+checker.appCode)

	response, err := checker.httpClient.Do(request)
	if err != nil {
		return apperr.DependencyFailure("Identity gateway is unreachable", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<16))
	if err != nil {
		return apperr.DependencyFailure("Identity gateway response could not be read", err)
	}

	if response.StatusCode != http.StatusOK {
		return apperr.DependencyFailure(
			fmt.Sprintf("Identity gateway returned HTTP %d", response.StatusCode), nil)
	}

	var result gatewayResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return apperr.DependencyFailure("Identity gateway returned an unexpected payload", err)
	}

	switch result.Status {
	case gatewayStatusMatch:
		return nil
	case gatewayStatusMismatch:
		return apperr.IdentityMismatch("Name and ID number do not match")
	default:
		return apperr.DependencyFailure(
			fmt.Sprintf("Identity gateway returned status %q", result.Status), nil)
	}
}
