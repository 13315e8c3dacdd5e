// Copyright (c) 2026 HKSD Tech. All rights reserved.

package agent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hksd-tech/hksd-api/internal/audit"
	"github.com/hksd-tech/hksd-api/internal/identity"
	"github.com/hksd-tech/hksd-api/internal/platform/apperr"
	"github.com/hksd-tech/hksd-api/internal/platform/constants"
	"github.com/hksd-tech/hksd-api/internal/platform/dberr"
	"github.com/hksd-tech/hksd-api/internal/platform/sec"
	"github.com/hksd-tech/hksd-api/internal/verification"
	"github.com/hksd-tech/hksd-api/pkg/orderno"
	"github.com/hksd-tech/hksd-api/pkg/pagination"
)

// # Contracts & Types

// Codes is the slice of the verification service the agent domain needs.
type Codes interface {
	// Issue generates, persists, and delivers a code for the scope.
	Issue(context context.Context, scope verification.Scope) error

	// Consume validates and burns a presented code for the scope.
	Consume(context context.Context, scope verification.Scope, presented string) error
}

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(identity sec.Identity, timeToLive time.Duration) (string, error)
}

// Session represents a successfully established agent session.
type Session struct {
	Token   string
	Account *Account
}

// Service implements the agent account use cases.
//
// # Review Process
//
// This service decides who may create accounts below them in the tree.
// Changes to the role policy or credential checks need a second reviewer.
type Service struct {
	accounts  AccountStore
	orders    OrderStore
	codes     Codes
	tokens    TokenIssuer
	idChecker identity.Checker
	auditor   *audit.Recorder
}

// NewService constructs a new agent [Service] with its dependencies.
func NewService(
	accounts AccountStore,
	orders OrderStore,
	codes Codes,
	tokens TokenIssuer,
	idChecker identity.Checker,
	auditor *audit.Recorder,
) *Service {
	return &Service{
		accounts:  accounts,
		orders:    orders,
		codes:     codes,
		tokens:    tokens,
		idChecker: idChecker,
		auditor:   auditor,
	}
}

// # Verification Codes

/*
SendCode issues a verification code to an agent phone.

Description: For the login and reset purposes the phone must already belong
to an active agent, so strangers and disabled accounts cannot use the
platform as an SMS cannon. The register purpose targets a prospective child
account and is exempt.

Parameters:
  - context: context.Context
  - phoneNumber: string (normalized)
  - purpose: string (one of the verification purposes)

Returns:
  - error: NotFound, RateLimited, DependencyFailure, or storage errors
*/
func (service *Service) SendCode(context context.Context, phoneNumber, purpose string) error {
	if purpose != verification.PurposeRegister {
		account, err := service.accounts.FindByPhone(context, phoneNumber)
		if err != nil {
			if errors.Is(err, dberr.ErrNotFound) {
				return apperr.NotFound("Agent account")
			}
			return fmt.Errorf("agent_service_send_code_lookup_failed: %w", err)
		}
		if !account.Active() {
			return apperr.NotFound("Agent account")
		}
	}

	return service.codes.Issue(context, verification.Scope{
		Domain:  verification.DomainAgent,
		Phone:   phoneNumber,
		Purpose: purpose,
	})
}

// # Authentication Flow

/*
LoginPassword authenticates an agent with phone and password.

Description: Performs constant-time password comparison and mints a stateless
session token carrying the role and parent link.

Parameters:
  - context: context.Context
  - phoneNumber: string (normalized)
  - password: string
  - ipAddress: string

Returns:
  - *Session: Token and account profile
  - error: InvalidCredentials or internal failures
*/
func (service *Service) LoginPassword(context context.Context, phoneNumber, password, ipAddress string) (*Session, error) {
	account, err := service.accounts.FindByPhone(context, phoneNumber)

	// Unknown phone, disabled account, and wrong password produce the same
	// generic answer to prevent account enumeration.
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.InvalidCredentials()
		}
		return nil, fmt.Errorf("agent_service_login_lookup_failed: %w", err)
	}

	if !account.Active() || !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	session, err := service.establishSession(account)
	if err != nil {
		return nil, err
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainAgent,
		AccountID: &account.ID,
		Phone:     account.Phone,
		Action:    audit.ActionLogin,
		IPAddress: ipAddress,
	})

	return session, nil
}

/*
LoginCode authenticates an agent with phone and verification code.

Description: The account must already exist and be active; code login never
provisions agents. The code is checked and burned before the account lookup,
so a wrong code always answers InvalidCode and reveals nothing about the
phone.

Parameters:
  - context: context.Context
  - phoneNumber: string (normalized)
  - code: string
  - ipAddress: string

Returns:
  - *Session: Token and account profile
  - error: InvalidCode, NotFound, or internal failures
*/
func (service *Service) LoginCode(context context.Context, phoneNumber, code, ipAddress string) (*Session, error) {
	scope := verification.Scope{
		Domain:  verification.DomainAgent,
		Phone:   phoneNumber,
		Purpose: verification.PurposeLogin,
	}
	if err := service.codes.Consume(context, scope, code); err != nil {
		return nil, err
	}

	account, err := service.accounts.FindByPhone(context, phoneNumber)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Agent account")
		}
		return nil, fmt.Errorf("agent_service_code_login_lookup_failed: %w", err)
	}
	if !account.Active() {
		return nil, apperr.NotFound("Agent account")
	}

	session, err := service.establishSession(account)
	if err != nil {
		return nil, err
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainAgent,
		AccountID: &account.ID,
		Phone:     account.Phone,
		Action:    audit.ActionLoginCode,
		IPAddress: ipAddress,
	})

	return session, nil
}

// establishSession mints a session token for the account.
func (service *Service) establishSession(account *Account) (*Session, error) {
	token, err := service.tokens.Issue(sec.Identity{
		AccountID: account.ID,
		Phone:     account.Phone,
		Domain:    sec.DomainAgent,
		Role:      string(account.Role),
		ParentID:  account.ParentID,
	}, constants.SessionTokenTTL)

	if err != nil {
		return nil, fmt.Errorf("agent_service_token_issue_failed: %w", err)
	}

	return &Session{Token: token, Account: account}, nil
}

// # Password Recovery

/*
ResetPassword replaces an agent's password after code verification.

Description: The code proves current control of the phone and is checked
first. Outstanding session tokens stay valid until expiry; sessions are
stateless.

Parameters:
  - context: context.Context
  - phoneNumber: string (normalized)
  - code: string
  - newPassword: string

Returns:
  - error: InvalidCode, NotFound, or internal failures
*/
func (service *Service) ResetPassword(context context.Context, phoneNumber, code, newPassword string) error {
	scope := verification.Scope{
		Domain:  verification.DomainAgent,
		Phone:   phoneNumber,
		Purpose: verification.PurposeReset,
	}
	if err := service.codes.Consume(context, scope, code); err != nil {
		return err
	}

	account, err := service.accounts.FindByPhone(context, phoneNumber)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("Agent account")
		}
		return fmt.Errorf("agent_service_reset_lookup_failed: %w", err)
	}
	if !account.Active() {
		return apperr.NotFound("Agent account")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("agent_service_reset_hash_failed: %w", err)
	}

	if err := service.accounts.UpdatePassword(context, account.ID, hashedPassword); err != nil {
		return fmt.Errorf("agent_service_reset_update_failed: %w", err)
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainAgent,
		AccountID: &account.ID,
		Phone:     account.Phone,
		Action:    audit.ActionResetPassword,
	})

	return nil
}

// # Child Enrollment

// CreateChildInput holds the data required to enroll a child account.
type CreateChildInput struct {
	Phone    string
	Password string
	Name     string
	Role     string
	Code     string // Optional register-purpose code confirming phone control.
	RealName string // Optional, paired with IDNumber.
	IDNumber string
}

/*
CreateChild enrolls a new account directly below the caller.

Description: The caller's role and status are read back from storage, never
trusted from the token; a disabled caller may not enroll anyone. The child
role must sit exactly one level lower. When a code is supplied it must be a
valid register code for the child's phone; when identity details are
supplied the name/number pairing is verified.

Parameters:
  - context: context.Context
  - callerID: int64
  - input: CreateChildInput

Returns:
  - *Account: Created child
  - error: Forbidden, InvalidCode, IdentityMismatch, Conflict, or internal failures
*/
func (service *Service) CreateChild(context context.Context, callerID int64, input CreateChildInput) (*Account, error) {
	parent, err := service.accounts.FindByID(context, callerID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, fmt.Errorf("agent_service_create_child_lookup_failed: %w", err)
	}
	if !parent.Active() {
		return nil, apperr.Forbidden("Account is disabled")
	}

	childRole := sec.Role(input.Role)
	if !childRole.Known() {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldRole,
			Message: "Unknown role",
		})
	}
	if !sec.CanCreateChild(parent.Role, childRole) {
		return nil, apperr.Forbidden("Role must be exactly one level below your own")
	}

	// Fast-path duplicate check so an obviously taken phone does not burn
	// the code below. The unique index remains the final arbiter.
	if _, err := service.accounts.FindByPhone(context, input.Phone); err == nil {
		return nil, apperr.Conflict("Phone number is already registered")
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("agent_service_create_child_phone_check_failed: %w", err)
	}

	// Phone-control proof is optional at this endpoint; when present it must
	// hold.
	if input.Code != "" {
		scope := verification.Scope{
			Domain:  verification.DomainAgent,
			Phone:   input.Phone,
			Purpose: verification.PurposeRegister,
		}
		if err := service.codes.Consume(context, scope, input.Code); err != nil {
			return nil, err
		}
	}

	if input.RealName != "" || input.IDNumber != "" {
		if err := service.idChecker.Verify(context, input.RealName, input.IDNumber); err != nil {
			return nil, err
		}
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("agent_service_create_child_hash_failed: %w", err)
	}

	child := &Account{
		Phone:        input.Phone,
		PasswordHash: hashedPassword,
		Name:         input.Name,
		Role:         childRole,
		Status:       AccountStatusActive,
		ParentID:     &parent.ID,
		RealName:     input.RealName,
		IDNumber:     input.IDNumber,
	}

	// The unique index on phone decides concurrent duplicate enrollment.
	if err := service.accounts.Create(context, child); err != nil {
		return nil, err
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainAgent,
		AccountID: &parent.ID,
		Phone:     parent.Phone,
		Action:    audit.ActionCreateChild,
		Detail:    "child_id=" + strconv.FormatInt(child.ID, 10) + " role=" + string(childRole),
	})

	return child, nil
}

// # Profile & Tree Reads

// Profile returns the caller's own account.
func (service *Service) Profile(context context.Context, accountID int64) (*Account, error) {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Agent account")
		}
		return nil, fmt.Errorf("agent_service_profile_failed: %w", err)
	}
	return account, nil
}

// ListChildren returns one page of the caller's direct children.
func (service *Service) ListChildren(context context.Context, callerID int64, params pagination.Params) ([]Account, int, error) {
	return service.accounts.ListChildren(context, callerID, params)
}

// # Orders

// CreateOrderInput holds the data required to record an order.
type CreateOrderInput struct {
	Title  string
	Amount string
}

/*
CreateOrder records a new order for the caller.

Description: The order number is generated server-side and returned to the
client; a unique index makes collisions a retryable Conflict.

Parameters:
  - context: context.Context
  - callerID: int64
  - input: CreateOrderInput

Returns:
  - *Order: Created order
  - error: Conflict or internal failures
*/
func (service *Service) CreateOrder(context context.Context, callerID int64, input CreateOrderInput) (*Order, error) {
	order := &Order{
		OrderNo: orderno.New(),
		AgentID: callerID,
		Title:   input.Title,
		Amount:  input.Amount,
		Status:  OrderStatusCreated,
	}

	if err := service.orders.Create(context, order); err != nil {
		return nil, err
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainAgent,
		AccountID: &callerID,
		Action:    audit.ActionCreateOrder,
		Detail:    "order_no=" + order.OrderNo,
	})

	return order, nil
}

// ListOrders returns one page of the caller's orders.
func (service *Service) ListOrders(context context.Context, callerID int64, params pagination.Params) ([]Order, int, error) {
	return service.orders.ListByAgent(context, callerID, params)
}

// # Activity Log

// ListLogs returns the caller's newest audit entries, bounded by limit.
func (service *Service) ListLogs(context context.Context, callerID int64, limit int) ([]audit.Entry, error) {
	if limit < 1 || limit > constants.MaxListLimit {
		limit = constants.MaxListLimit
	}
	return service.auditor.List(context, verification.DomainAgent, callerID, limit)
}
