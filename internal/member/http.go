// Copyright (c) 2026 HKSD Tech. All rights reserved.

package member

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hksd-tech/hksd-api/internal/platform/middleware"
	requestutil "github.com/hksd-tech/hksd-api/internal/platform/request"
	"github.com/hksd-tech/hksd-api/internal/platform/respond"
	"github.com/hksd-tech/hksd-api/internal/platform/sec"
	"github.com/hksd-tech/hksd-api/internal/platform/validate"
	"github.com/hksd-tech/hksd-api/internal/verification"
	"github.com/hksd-tech/hksd-api/pkg/phone"
)

// # Definitions & Constructors

// Handler implements the member-facing HTTP endpoints.
type Handler struct {
	memberService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{memberService: service}
}

// Routes returns a [chi.Router] configured with member routes.
//
// # Endpoints
//   - POST /send-code       : Issues a verification code.
//   - POST /verify-code     : Burns a code as a discrete phone-proof step.
//   - POST /verify-id-card  : Checks a name/ID pairing without persisting.
//   - POST /register        : Creates an account (code required).
//   - POST /login           : Password login.
//   - POST /login-code      : Code login.
//   - POST /reset-password  : Code-verified password reset.
//
// /profile and /identity require a member-domain session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/send-code", handler.sendCode)
	router.Post("/verify-code", handler.verifyCode)
	router.Post("/verify-id-card", handler.verifyIDCard)
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/login-code", handler.loginCode)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireDomain(sec.DomainMember))
		r.Get("/profile", handler.profile)
		r.Post("/identity", handler.attachIdentity)
	})

	return router
}

// # Request Payloads

type sendCodeRequest struct {
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
}

type verifyCodeRequest struct {
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
	Code    string `json:"code"`
}

type verifyIDCardRequest struct {
	RealName string `json:"real_name"`
	IDNumber string `json:"id_number"`
}

type registerRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
	Code     string `json:"code"`
	RealName string `json:"real_name,omitempty"`
	IDNumber string `json:"id_number,omitempty"`
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type resetPasswordRequest struct {
	Phone       string `json:"phone"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type attachIdentityRequest struct {
	RealName string `json:"real_name"`
	IDNumber string `json:"id_number"`
}

// # Verification Codes

/*
SendCode issues a verification code to a member phone.

POST /api/v1/auth/send-code

Request:
  - Body: sendCodeRequest (Phone, Purpose)

Response:
  - 200: Message: Code sent, ExpiresIn: code lifetime in seconds
  - 404: ErrNotFound: Phone not registered (login/reset purposes)
  - 409: ErrConflict: Phone already registered (register purpose)
  - 429: ErrRateLimited: Resend window still open
  - 502: ErrDependencyFailure: SMS gateway failure
*/
func (handler *Handler) sendCode(writer http.ResponseWriter, request *http.Request) {
	var input sendCodeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	normalized := phone.Normalize(input.Phone)

	validator := &validate.Validator{}
	validator.Required(FieldPhone, normalized).
		Phone(FieldPhone, normalized).
		OneOf(FieldPurpose, input.Purpose,
			verification.PurposeLogin, verification.PurposeRegister, verification.PurposeReset)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.memberService.SendCode(request.Context(), normalized, input.Purpose); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage:   "Verification code sent",
		FieldExpiresIn: int(verification.CodeTTL.Seconds()),
	})
}

/*
VerifyCode burns a presented code as a discrete phone-proof step.

POST /api/v1/auth/verify-code

Request:
  - Body: verifyCodeRequest (Phone, Purpose, Code)

Response:
  - 200: Verified: true
  - 401: ErrInvalidCode: Code invalid, expired, or already used
*/
func (handler *Handler) verifyCode(writer http.ResponseWriter, request *http.Request) {
	var input verifyCodeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	normalized := phone.Normalize(input.Phone)

	validator := &validate.Validator{}
	validator.Required(FieldPhone, normalized).
		Phone(FieldPhone, normalized).
		OneOf(FieldPurpose, input.Purpose,
			verification.PurposeLogin, verification.PurposeRegister, verification.PurposeReset).
		Required(FieldCode, input.Code).
		Code(FieldCode, input.Code)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.memberService.VerifyCode(request.Context(), normalized, input.Purpose, input.Code); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{
		FieldVerified: true,
	})
}

// # Identity Verification

/*
VerifyIDCard checks a name/ID-number pairing without persisting anything.

POST /api/v1/auth/verify-id-card

Request:
  - Body: verifyIDCardRequest (RealName, IDNumber)

Response:
  - 200: Verified: true
  - 422: ErrIdentityMismatch: Pairing rejected
  - 502: ErrDependencyFailure: Identity gateway failure
*/
func (handler *Handler) verifyIDCard(writer http.ResponseWriter, request *http.Request) {
	var input verifyIDCardRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRealName, input.RealName).
		Required(FieldIDNumber, input.IDNumber).
		NationalID(FieldIDNumber, input.IDNumber)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.memberService.VerifyIDCard(request.Context(), input.RealName, input.IDNumber); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{
		FieldVerified: true,
	})
}

// # Registration

/*
Register creates a new member account.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (Phone, Password, Code, Nickname?, RealName?, IDNumber?)

Response:
  - 201: Session: Token and created account
  - 401: ErrInvalidCode: Code invalid, expired, or already used
  - 409: ErrConflict: Phone already registered
  - 422: ErrIdentityMismatch: Identity pairing rejected
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	normalized := phone.Normalize(input.Phone)

	validator := &validate.Validator{}
	validator.Required(FieldPhone, normalized).
		Phone(FieldPhone, normalized).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 6).
		Required(FieldCode, input.Code).
		Code(FieldCode, input.Code).
		MaxLen(FieldNickname, input.Nickname, 32)

	if input.RealName != "" || input.IDNumber != "" {
		validator.Required(FieldRealName, input.RealName).
			Required(FieldIDNumber, input.IDNumber).
			NationalID(FieldIDNumber, input.IDNumber)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.memberService.Register(request.Context(), RegisterInput{
		Phone:    normalized,
		Password: input.Password,
		Nickname: input.Nickname,
		Code:     input.Code,
		RealName: input.RealName,
		IDNumber: input.IDNumber,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusCreated, respond.SuccessEnvelope{Data: map[string]any{
		FieldToken:   session.Token,
		FieldAccount: session.Account,
	}})
}

// # Authentication

/*
Login authenticates a member with phone and password.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Phone, Password)

Response:
  - 200: Session: Token and account profile
  - 401: ErrInvalidCredentials: Unknown phone or wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	normalized := phone.Normalize(input.Phone)

	validator := &validate.Validator{}
	validator.Required(FieldPhone, normalized).
		Phone(FieldPhone, normalized).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.memberService.Login(
		request.Context(), normalized, input.Password, middleware.RealIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldToken:   session.Token,
		FieldAccount: session.Account,
	})
}

/*
LoginCode authenticates a member with phone and verification code.

POST /api/v1/auth/login-code

Request:
  - Body: loginCodeRequest (Phone, Code)

Response:
  - 200: Session: Token and account profile
  - 401: ErrInvalidCode: Code invalid, expired, or already used
  - 404: ErrNotFound: Phone not registered
*/
func (handler *Handler) loginCode(writer http.ResponseWriter, request *http.Request) {
	var input loginCodeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	normalized := phone.Normalize(input.Phone)

	validator := &validate.Validator{}
	validator.Required(FieldPhone, normalized).
		Phone(FieldPhone, normalized).
		Required(FieldCode, input.Code).
		Code(FieldCode, input.Code)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.memberService.LoginCode(
		request.Context(), normalized, input.Code, middleware.RealIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldToken:   session.Token,
		FieldAccount: session.Account,
	})
}

/*
ResetPassword replaces a member's password after code verification.

POST /api/v1/auth/reset-password

Request:
  - Body: resetPasswordRequest (Phone, Code, NewPassword)

Response:
  - 200: Message: Password updated
  - 401: ErrInvalidCode: Code invalid, expired, or already used
  - 404: ErrNotFound: Phone not registered
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	normalized := phone.Normalize(input.Phone)

	validator := &validate.Validator{}
	validator.Required(FieldPhone, normalized).
		Phone(FieldPhone, normalized).
		Required(FieldCode, input.Code).
		Code(FieldCode, input.Code).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 6)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.memberService.ResetPassword(request.Context(), normalized, input.Code, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

// # Profile

/*
Profile returns the authenticated member's own account.

GET /api/v1/auth/profile

Response:
  - 200: Member: Caller profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.memberService.Profile(request.Context(), callerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
AttachIdentity verifies and stores a real-name identity on the caller.

POST /api/v1/auth/identity

Request:
  - Body: attachIdentityRequest (RealName, IDNumber)

Response:
  - 200: Message: Identity attached
  - 422: ErrIdentityMismatch: Pairing rejected
  - 502: ErrDependencyFailure: Identity gateway failure
*/
func (handler *Handler) attachIdentity(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input attachIdentityRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRealName, input.RealName).
		Required(FieldIDNumber, input.IDNumber).
		NationalID(FieldIDNumber, input.IDNumber)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.memberService.AttachIdentity(request.Context(), callerID, input.RealName, input.IDNumber); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Identity verified and attached",
	})
}
