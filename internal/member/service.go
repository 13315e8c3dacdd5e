// Copyright (c) 2026 HKSD Tech. All rights reserved.

package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hksd-tech/hksd-api/internal/audit"
	"github.com/hksd-tech/hksd-api/internal/identity"
	"github.com/hksd-tech/hksd-api/internal/platform/apperr"
	"github.com/hksd-tech/hksd-api/internal/platform/constants"
	"github.com/hksd-tech/hksd-api/internal/platform/dberr"
	"github.com/hksd-tech/hksd-api/internal/platform/sec"
	"github.com/hksd-tech/hksd-api/internal/verification"
)

// # Contracts & Types

// Codes is the slice of the verification service the member domain needs.
type Codes interface {
	Issue(context context.Context, scope verification.Scope) error
	Consume(context context.Context, scope verification.Scope, presented string) error
}

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(identity sec.Identity, timeToLive time.Duration) (string, error)
}

// Session represents a successfully established member session.
type Session struct {
	Token   string
	Account *Member
}

// Service implements the member account use cases.
type Service struct {
	members   Store
	codes     Codes
	tokens    TokenIssuer
	idChecker identity.Checker
	auditor   *audit.Recorder
}

// NewService constructs a new member [Service] with its dependencies.
func NewService(
	members Store,
	codes Codes,
	tokens TokenIssuer,
	idChecker identity.Checker,
	auditor *audit.Recorder,
) *Service {
	return &Service{
		members:   members,
		codes:     codes,
		tokens:    tokens,
		idChecker: idChecker,
		auditor:   auditor,
	}
}

// # Verification Codes

/*
SendCode issues a verification code to a member phone.

Description: The register purpose requires the phone NOT to be registered
yet; login and reset require it to be. Both rules exist to keep the SMS
gateway from being used against arbitrary numbers.

Parameters:
  - context: context.Context
  - phoneNumber: string (normalized)
  - purpose: string

Returns:
  - error: NotFound, Conflict, RateLimited, DependencyFailure, or storage errors
*/
func (service *Service) SendCode(context context.Context, phoneNumber, purpose string) error {
	account, err := service.members.FindByPhone(context, phoneNumber)

	switch purpose {
	case verification.PurposeRegister:
		// Any account of any status claims the phone.
		if err == nil {
			return apperr.Conflict("Phone number is already registered")
		}
		if !errors.Is(err, dberr.ErrNotFound) {
			return fmt.Errorf("member_service_send_code_lookup_failed: %w", err)
		}
	default:
		if err != nil {
			if errors.Is(err, dberr.ErrNotFound) {
				return apperr.NotFound("Member account")
			}
			return fmt.Errorf("member_service_send_code_lookup_failed: %w", err)
		}
		if !account.Active() {
			return apperr.NotFound("Member account")
		}
	}

	return service.codes.Issue(context, verification.Scope{
		Domain:  verification.DomainMember,
		Phone:   phoneNumber,
		Purpose: purpose,
	})
}

/*
VerifyCode burns a presented code without completing any flow.

Description: Lets a client confirm phone control as a discrete step, for
example before showing the second page of a registration form. The code is
consumed; the follow-up operation needs a fresh one.

Parameters:
  - context: context.Context
  - phoneNumber: string (normalized)
  - purpose: string
  - code: string

Returns:
  - error: apperr.InvalidCode or internal failures
*/
func (service *Service) VerifyCode(context context.Context, phoneNumber, purpose, code string) error {
	return service.codes.Consume(context, verification.Scope{
		Domain:  verification.DomainMember,
		Phone:   phoneNumber,
		Purpose: purpose,
	}, code)
}

// # Identity Verification

/*
VerifyIDCard checks a name/ID-number pairing without persisting anything.

Parameters:
  - context: context.Context
  - realName: string
  - idNumber: string

Returns:
  - error: IdentityMismatch, DependencyFailure, or nil on match
*/
func (service *Service) VerifyIDCard(context context.Context, realName, idNumber string) error {
	return service.idChecker.Verify(context, realName, idNumber)
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Phone    string
	Password string
	Nickname string
	Code     string // Required register-purpose code proving phone control.
	RealName string // Optional, paired with IDNumber.
	IDNumber string
}

/*
Register validates the code, optionally verifies identity, and persists a
new member account.

Description: The verification code is mandatory; self-service registration
without phone proof does not exist. A fast-path existence check runs before
the code burns; only a lost concurrent race against the unique index can
still burn the code on a failed registration, costing that caller one
resend.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Session: Token and created account
  - error: InvalidCode, IdentityMismatch, Conflict, or internal failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Session, error) {
	if _, err := service.members.FindByPhone(context, input.Phone); err == nil {
		return nil, apperr.Conflict("Phone number is already registered")
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("member_service_register_phone_check_failed: %w", err)
	}

	scope := verification.Scope{
		Domain:  verification.DomainMember,
		Phone:   input.Phone,
		Purpose: verification.PurposeRegister,
	}
	if err := service.codes.Consume(context, scope, input.Code); err != nil {
		return nil, err
	}

	verified := false
	if input.RealName != "" || input.IDNumber != "" {
		if err := service.idChecker.Verify(context, input.RealName, input.IDNumber); err != nil {
			return nil, err
		}
		verified = true
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("member_service_register_hash_failed: %w", err)
	}

	account := &Member{
		Phone:        input.Phone,
		PasswordHash: hashedPassword,
		Nickname:     input.Nickname,
		RealName:     input.RealName,
		IDNumber:     input.IDNumber,
		IDVerified:   verified,
		Status:       MemberStatusActive,
	}

	// The unique index on phone decides concurrent duplicate registration.
	if err := service.members.Create(context, account); err != nil {
		return nil, err
	}

	session, err := service.establishSession(account)
	if err != nil {
		return nil, err
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainMember,
		AccountID: &account.ID,
		Phone:     account.Phone,
		Action:    audit.ActionRegister,
	})

	return session, nil
}

// # Authentication Flow

/*
Login authenticates a member with phone and password.

Parameters:
  - context: context.Context
  - phoneNumber: string (normalized)
  - password: string
  - ipAddress: string

Returns:
  - *Session: Token and account profile
  - error: InvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, phoneNumber, password, ipAddress string) (*Session, error) {
	account, err := service.members.FindByPhone(context, phoneNumber)

	// Unknown phone, disabled account, and wrong password produce the same
	// generic answer.
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.InvalidCredentials()
		}
		return nil, fmt.Errorf("member_service_login_lookup_failed: %w", err)
	}

	if !account.Active() || !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	session, err := service.establishSession(account)
	if err != nil {
		return nil, err
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainMember,
		AccountID: &account.ID,
		Phone:     account.Phone,
		Action:    audit.ActionLogin,
		IPAddress: ipAddress,
	})

	return session, nil
}

/*
LoginCode authenticates a member with phone and verification code.

Description: The code is checked and burned before the account lookup, so a
wrong code always answers InvalidCode and reveals nothing about the phone.

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
		Domain:  verification.DomainMember,
		Phone:   phoneNumber,
		Purpose: verification.PurposeLogin,
	}
	if err := service.codes.Consume(context, scope, code); err != nil {
		return nil, err
	}

	account, err := service.members.FindByPhone(context, phoneNumber)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Member account")
		}
		return nil, fmt.Errorf("member_service_code_login_lookup_failed: %w", err)
	}
	if !account.Active() {
		return nil, apperr.NotFound("Member account")
	}

	session, err := service.establishSession(account)
	if err != nil {
		return nil, err
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainMember,
		AccountID: &account.ID,
		Phone:     account.Phone,
		Action:    audit.ActionLoginCode,
		IPAddress: ipAddress,
	})

	return session, nil
}

// establishSession mints a session token for the member.
func (service *Service) establishSession(account *Member) (*Session, error) {
	token, err := service.tokens.Issue(sec.Identity{
		AccountID: account.ID,
		Phone:     account.Phone,
		Domain:    sec.DomainMember,
	}, constants.SessionTokenTTL)

	if err != nil {
		return nil, fmt.Errorf("member_service_token_issue_failed: %w", err)
	}

	return &Session{Token: token, Account: account}, nil
}

// # Password Recovery

/*
ResetPassword replaces a member's password after code verification.

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
		Domain:  verification.DomainMember,
		Phone:   phoneNumber,
		Purpose: verification.PurposeReset,
	}
	if err := service.codes.Consume(context, scope, code); err != nil {
		return err
	}

	account, err := service.members.FindByPhone(context, phoneNumber)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("Member account")
		}
		return fmt.Errorf("member_service_reset_lookup_failed: %w", err)
	}
	if !account.Active() {
		return apperr.NotFound("Member account")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("member_service_reset_hash_failed: %w", err)
	}

	if err := service.members.UpdatePassword(context, account.ID, hashedPassword); err != nil {
		return fmt.Errorf("member_service_reset_update_failed: %w", err)
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainMember,
		AccountID: &account.ID,
		Phone:     account.Phone,
		Action:    audit.ActionResetPassword,
	})

	return nil
}

// # Profile

// Profile returns the caller's own account.
func (service *Service) Profile(context context.Context, memberID int64) (*Member, error) {
	account, err := service.members.FindByID(context, memberID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Member account")
		}
		return nil, fmt.Errorf("member_service_profile_failed: %w", err)
	}
	return account, nil
}

/*
AttachIdentity verifies and stores a real-name identity on the caller.

Description: Available after registration for members who skipped the
identity step. The pairing is verified before anything persists.

Parameters:
  - context: context.Context
  - memberID: int64
  - realName: string
  - idNumber: string

Returns:
  - error: IdentityMismatch, DependencyFailure, or internal failures
*/
func (service *Service) AttachIdentity(context context.Context, memberID int64, realName, idNumber string) error {
	account, err := service.members.FindByID(context, memberID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("Member account")
		}
		return fmt.Errorf("member_service_attach_lookup_failed: %w", err)
	}

	if err := service.idChecker.Verify(context, realName, idNumber); err != nil {
		return err
	}

	if err := service.members.AttachIdentity(context, account.ID, realName, idNumber); err != nil {
		return fmt.Errorf("member_service_attach_failed: %w", err)
	}

	service.auditor.Record(context, audit.Entry{
		Domain:    verification.DomainMember,
		AccountID: &account.ID,
		Phone:     account.Phone,
		Action:    audit.ActionVerifyID,
	})

	return nil
}
