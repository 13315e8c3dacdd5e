// Copyright (c) 2026 HKSD Tech. All rights reserved.

/*
Package agent provides the HTTP delivery layer for the agent console.

# Architecture

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface.
  - Security: Relies on middleware-injected session claims.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/
package agent

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hksd-tech/hksd-api/internal/platform/middleware"
	requestutil "github.com/hksd-tech/hksd-api/internal/platform/request"
	"github.com/hksd-tech/hksd-api/internal/platform/respond"
	"github.com/hksd-tech/hksd-api/internal/platform/sec"
	"github.com/hksd-tech/hksd-api/internal/platform/validate"
	"github.com/hksd-tech/hksd-api/internal/verification"
	"github.com/hksd-tech/hksd-api/pkg/pagination"
	"github.com/hksd-tech/hksd-api/pkg/phone"
)

// # Definitions & Constructors

// Handler implements the agent-facing HTTP endpoints.
type Handler struct {
	agentService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{agentService: service}
}

// Routes returns a [chi.Router] configured with agent routes.
//
// # Endpoints
//   - POST /send-code      : Issues a verification code.
//   - POST /login          : Password login.
//   - POST /login-code     : Code login.
//   - POST /reset-password : Code-verified password reset.
//
// Everything below /children, /orders, /logs and /profile requires an
// agent-domain session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/send-code", handler.sendCode)
	router.Post("/login", handler.login)
	router.Post("/login-code", handler.loginCode)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireDomain(sec.DomainAgent))
		r.Get("/profile", handler.profile)
		r.Post("/children", handler.createChild)
		r.Get("/children", handler.listChildren)
		r.Post("/orders", handler.createOrder)
		r.Get("/orders", handler.listOrders)
		r.Get("/logs", handler.listLogs)
	})

	return router
}

// # Request Payloads

type sendCodeRequest struct {
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
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

type createChildRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Code     string `json:"code,omitempty"`
	RealName string `json:"real_name,omitempty"`
	IDNumber string `json:"id_number,omitempty"`
}

type createOrderRequest struct {
	Title  string `json:"title"`
	Amount string `json:"amount"`
}

// # Verification Codes

/*
SendCode issues a verification code to an agent phone.

POST /api/v1/agent/send-code

Request:
  - Body: sendCodeRequest (Phone, Purpose)

Response:
  - 200: Message: Code sent, ExpiresIn: code lifetime in seconds
  - 404: ErrNotFound: Phone not registered (login/reset purposes)
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
		OneOf(verification.FieldPurpose, input.Purpose,
			verification.PurposeLogin, verification.PurposeRegister, verification.PurposeReset)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.agentService.SendCode(request.Context(), normalized, input.Purpose); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage:   "Verification code sent",
		FieldExpiresIn: int(verification.CodeTTL.Seconds()),
	})
}

// # Authentication

/*
Login authenticates an agent with phone and password.

POST /api/v1/agent/login

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

	session, err := handler.agentService.LoginPassword(
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
LoginCode authenticates an agent with phone and verification code.

POST /api/v1/agent/login-code

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

	session, err := handler.agentService.LoginCode(
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
ResetPassword replaces an agent's password after code verification.

POST /api/v1/agent/reset-password

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

	err := handler.agentService.ResetPassword(request.Context(), normalized, input.Code, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

// # Profile & Tree

/*
Profile returns the authenticated agent's own account.

GET /api/v1/agent/profile

Response:
  - 200: Account: Caller profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.agentService.Profile(request.Context(), callerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
CreateChild enrolls a new account one level below the caller.

POST /api/v1/agent/children

Request:
  - Body: createChildRequest (Phone, Password, Name, Role, Code?, RealName?, IDNumber?)

Response:
  - 201: Account: Created child
  - 403: ErrForbidden: Role not exactly one level below caller
  - 409: ErrConflict: Phone already registered
  - 422: ErrIdentityMismatch: Name and ID number do not match
*/
func (handler *Handler) createChild(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createChildRequest
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
		Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 64).
		Required(FieldRole, input.Role)

	if input.Code != "" {
		validator.Code(FieldCode, input.Code)
	}
	if input.RealName != "" || input.IDNumber != "" {
		validator.Required(FieldRealName, input.RealName).
			Required(FieldIDNumber, input.IDNumber).
			NationalID(FieldIDNumber, input.IDNumber)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	child, err := handler.agentService.CreateChild(request.Context(), callerID, CreateChildInput{
		Phone:    normalized,
		Password: input.Password,
		Name:     input.Name,
		Role:     input.Role,
		Code:     input.Code,
		RealName: input.RealName,
		IDNumber: input.IDNumber,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, child)
}

/*
ListChildren returns one page of the caller's direct children.

GET /api/v1/agent/children?page=&limit=

Response:
  - 200: []Account with pagination metadata
*/
func (handler *Handler) listChildren(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	children, total, err := handler.agentService.ListChildren(request.Context(), callerID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, children, pagination.NewMeta(params.Page, params.Limit, total))
}

// # Orders

/*
CreateOrder records a new order for the caller.

POST /api/v1/agent/orders

Request:
  - Body: createOrderRequest (Title, Amount)

Response:
  - 201: Order: Created order with server-assigned order number
*/
func (handler *Handler) createOrder(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createOrderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 128).
		Required(FieldAmount, input.Amount).
		Amount(FieldAmount, input.Amount)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := handler.agentService.CreateOrder(request.Context(), callerID, CreateOrderInput{
		Title:  input.Title,
		Amount: input.Amount,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, order)
}

/*
ListOrders returns one page of the caller's orders.

GET /api/v1/agent/orders?page=&limit=

Response:
  - 200: []Order with pagination metadata
*/
func (handler *Handler) listOrders(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	orders, total, err := handler.agentService.ListOrders(request.Context(), callerID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, orders, pagination.NewMeta(params.Page, params.Limit, total))
}

// # Activity Log

/*
ListLogs returns the caller's newest audit entries.

GET /api/v1/agent/logs?limit=

Response:
  - 200: []audit.Entry, newest first
*/
func (handler *Handler) listLogs(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	limit := 0
	if raw := request.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, err := handler.agentService.ListLogs(request.Context(), callerID, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}
