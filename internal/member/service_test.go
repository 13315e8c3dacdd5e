// Copyright (c) 2026 HKSD Tech. All rights reserved.

package member_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hksd-tech/hksd-api/internal/audit"
	"github.com/hksd-tech/hksd-api/internal/member"
	"github.com/hksd-tech/hksd-api/internal/platform/apperr"
	"github.com/hksd-tech/hksd-api/internal/platform/dberr"
	"github.com/hksd-tech/hksd-api/internal/platform/sec"
	"github.com/hksd-tech/hksd-api/internal/verification"
)

// # Test Fakes

// fakeStore is an in-memory [member.Store].
type fakeStore struct {
	members map[int64]*member.Member
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{members: make(map[int64]*member.Member)}
}

func (s *fakeStore) seed(m *member.Member) *member.Member {
	s.nextID++
	m.ID = s.nextID
	s.members[m.ID] = m
	return m
}

func (s *fakeStore) Create(_ context.Context, m *member.Member) error {
	for _, existing := range s.members {
		if existing.Phone == m.Phone {
			return apperr.Conflict("Phone number is already registered")
		}
	}
	s.seed(m)
	return nil
}

func (s *fakeStore) FindByPhone(_ context.Context, phoneNumber string) (*member.Member, error) {
	for _, m := range s.members {
		if m.Phone == phoneNumber {
			return m, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (*member.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return m, nil
}

func (s *fakeStore) UpdatePassword(_ context.Context, memberID int64, newHash string) error {
	if m, ok := s.members[memberID]; ok {
		m.PasswordHash = newHash
	}
	return nil
}

func (s *fakeStore) AttachIdentity(_ context.Context, memberID int64, realName, idNumber string) error {
	if m, ok := s.members[memberID]; ok {
		m.RealName = realName
		m.IDNumber = idNumber
		m.IDVerified = true
	}
	return nil
}

// fakeCodes scripts the verification outcomes.
type fakeCodes struct {
	issueErr   error
	consumeErr error
	issued     []verification.Scope
	consumed   []verification.Scope
}

func (f *fakeCodes) Issue(_ context.Context, scope verification.Scope) error {
	if f.issueErr != nil {
		return f.issueErr
	}
	f.issued = append(f.issued, scope)
	return nil
}

func (f *fakeCodes) Consume(_ context.Context, scope verification.Scope, _ string) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.consumed = append(f.consumed, scope)
	return nil
}

// fakeTokens mints predictable session tokens.
type fakeTokens struct {
	lastIdentity sec.Identity
}

func (f *fakeTokens) Issue(identity sec.Identity, _ time.Duration) (string, error) {
	f.lastIdentity = identity
	return "token-for-" + identity.Phone, nil
}

// fakeChecker scripts the identity verification outcome.
type fakeChecker struct {
	err   error
	calls int
}

func (c *fakeChecker) Verify(_ context.Context, _, _ string) error {
	c.calls++
	return c.err
}

// memoryAuditStore captures audit rows for assertions.
type memoryAuditStore struct {
	entries []audit.Entry
}

func (s *memoryAuditStore) Insert(_ context.Context, entry *audit.Entry) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memoryAuditStore) ListRecent(_ context.Context, _ string, _ int64, _ int) ([]audit.Entry, error) {
	return s.entries, nil
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

type fixture struct {
	service  *member.Service
	store    *fakeStore
	codes    *fakeCodes
	tokens   *fakeTokens
	checker  *fakeChecker
	auditLog *memoryAuditStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	codes := &fakeCodes{}
	tokens := &fakeTokens{}
	checker := &fakeChecker{}
	auditLog := &memoryAuditStore{}
	logger := slog.New(slog.NewTextHandler(nopWriter{}, nil))

	return &fixture{
		service:  member.NewService(store, codes, tokens, checker, audit.NewRecorder(auditLog, logger)),
		store:    store,
		codes:    codes,
		tokens:   tokens,
		checker:  checker,
		auditLog: auditLog,
	}
}

func seedMember(f *fixture, phoneNumber, password string) *member.Member {
	hash, _ := sec.HashPassword(password)
	return f.store.seed(&member.Member{
		Phone:        phoneNumber,
		PasswordHash: hash,
		Nickname:     "tester",
		Status:       member.MemberStatusActive,
	})
}

// # Verification Codes

/*
TestService_SendCode_PurposeRules enforces the registration asymmetry.

Register codes go only to unregistered phones; login and reset codes go
only to registered ones.
*/
func TestService_SendCode_PurposeRules(t *testing.T) {
	tests := []struct {
		name       string
		registered bool
		purpose    string
		wantCode   string
	}{
		{"register_new_phone", false, verification.PurposeRegister, ""},
		{"register_taken_phone", true, verification.PurposeRegister, "CONFLICT"},
		{"login_known_phone", true, verification.PurposeLogin, ""},
		{"login_unknown_phone", false, verification.PurposeLogin, "NOT_FOUND"},
		{"reset_known_phone", true, verification.PurposeReset, ""},
		{"reset_unknown_phone", false, verification.PurposeReset, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.registered {
				seedMember(f, "13812345678", "secret123")
			}

			err := f.service.SendCode(context.Background(), "13812345678", tt.purpose)

			if tt.wantCode == "" {
				require.NoError(t, err)
				require.Len(t, f.codes.issued, 1)
				assert.Equal(t, verification.DomainMember, f.codes.issued[0].Domain)
			} else {
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, tt.wantCode, ae.Code)
				assert.Empty(t, f.codes.issued)
			}
		})
	}
}

/*
TestService_SendCode_DisabledAccount treats a disabled member like a stranger.
*/
func TestService_SendCode_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	account := seedMember(f, "13812345678", "secret123")
	account.Status = member.MemberStatusDisabled

	err := f.service.SendCode(context.Background(), "13812345678", verification.PurposeLogin)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
	assert.Empty(t, f.codes.issued)
}

/*
TestService_VerifyCode burns the code as a discrete step.
*/
func TestService_VerifyCode(t *testing.T) {
	f := newFixture(t)

	err := f.service.VerifyCode(context.Background(), "13812345678", verification.PurposeRegister, "123456")

	require.NoError(t, err)
	require.Len(t, f.codes.consumed, 1)
	assert.Equal(t, verification.PurposeRegister, f.codes.consumed[0].Purpose)
}

// # Registration

/*
TestService_Register_Success creates the account and opens a session.
*/
func TestService_Register_Success(t *testing.T) {
	f := newFixture(t)

	session, err := f.service.Register(context.Background(), member.RegisterInput{
		Phone:    "13812345678",
		Password: "secret123",
		Nickname: "newbie",
		Code:     "123456",
	})

	require.NoError(t, err)
	assert.Equal(t, "token-for-13812345678", session.Token)
	assert.Equal(t, "newbie", session.Account.Nickname)
	assert.False(t, session.Account.IDVerified)

	// Member tokens carry no role or parent claims.
	assert.Equal(t, sec.DomainMember, f.tokens.lastIdentity.Domain)
	assert.Empty(t, f.tokens.lastIdentity.Role)

	// The register code was burned for the member register scope.
	require.Len(t, f.codes.consumed, 1)
	assert.Equal(t, verification.PurposeRegister, f.codes.consumed[0].Purpose)

	require.Len(t, f.auditLog.entries, 1)
	assert.Equal(t, audit.ActionRegister, f.auditLog.entries[0].Action)
}

/*
TestService_Register_BadCode refuses before creating anything.
*/
func TestService_Register_BadCode(t *testing.T) {
	f := newFixture(t)
	f.codes.consumeErr = apperr.InvalidCode()

	_, err := f.service.Register(context.Background(), member.RegisterInput{
		Phone:    "13812345678",
		Password: "secret123",
		Code:     "000000",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_CODE", ae.Code)
	assert.Empty(t, f.store.members)
}

/*
TestService_Register_WithIdentity marks the account verified.
*/
func TestService_Register_WithIdentity(t *testing.T) {
	f := newFixture(t)

	session, err := f.service.Register(context.Background(), member.RegisterInput{
		Phone:    "13812345678",
		Password: "secret123",
		Code:     "123456",
		RealName: "张三",
		IDNumber: "110105194912310038",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.checker.calls)
	assert.True(t, session.Account.IDVerified)
	assert.Equal(t, "张三", session.Account.RealName)
}

/*
TestService_Register_IdentityMismatch blocks the account entirely.
*/
func TestService_Register_IdentityMismatch(t *testing.T) {
	f := newFixture(t)
	f.checker.err = apperr.IdentityMismatch("Name and ID number do not match")

	_, err := f.service.Register(context.Background(), member.RegisterInput{
		Phone:    "13812345678",
		Password: "secret123",
		Code:     "123456",
		RealName: "李四",
		IDNumber: "110105194912310038",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "IDENTITY_MISMATCH", ae.Code)
	assert.Empty(t, f.store.members)
}

/*
TestService_Register_DuplicatePhone conflicts before the code burns.

The fast-path existence check runs ahead of the code consumption, so a
repeat registration attempt keeps its code.
*/
func TestService_Register_DuplicatePhone(t *testing.T) {
	f := newFixture(t)
	seedMember(f, "13812345678", "secret123")

	_, err := f.service.Register(context.Background(), member.RegisterInput{
		Phone:    "13812345678",
		Password: "other-pass",
		Code:     "123456",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
	assert.Empty(t, f.codes.consumed)
}

// # Authentication

/*
TestService_Login_Success establishes a session and audits the address.
*/
func TestService_Login_Success(t *testing.T) {
	f := newFixture(t)
	account := seedMember(f, "13812345678", "secret123")

	session, err := f.service.Login(context.Background(), "13812345678", "secret123", "203.0.113.9")

	require.NoError(t, err)
	assert.Equal(t, account.ID, session.Account.ID)

	require.Len(t, f.auditLog.entries, 1)
	assert.Equal(t, audit.ActionLogin, f.auditLog.entries[0].Action)
	assert.Equal(t, "203.0.113.9", f.auditLog.entries[0].IPAddress)
}

/*
TestService_Login_Failures yields one generic answer for all causes.
*/
func TestService_Login_Failures(t *testing.T) {
	f := newFixture(t)
	seedMember(f, "13812345678", "secret123")

	for _, tt := range []struct {
		name     string
		phone    string
		password string
	}{
		{"unknown_phone", "13900000000", "secret123"},
		{"wrong_password", "13812345678", "nope"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Login(context.Background(), tt.phone, tt.password, "")

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "INVALID_CREDENTIALS", ae.Code)
		})
	}
}

/*
TestService_Login_DisabledAccount treats a disabled member like a bad password.
*/
func TestService_Login_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	account := seedMember(f, "13812345678", "secret123")
	account.Status = member.MemberStatusDisabled

	_, err := f.service.Login(context.Background(), "13812345678", "secret123", "")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_CREDENTIALS", ae.Code)
	assert.Empty(t, f.auditLog.entries)
}

/*
TestService_LoginCode_Success burns a login code and mints a session.
*/
func TestService_LoginCode_Success(t *testing.T) {
	f := newFixture(t)
	seedMember(f, "13812345678", "secret123")

	session, err := f.service.LoginCode(context.Background(), "13812345678", "123456", "")

	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	require.Len(t, f.codes.consumed, 1)
	assert.Equal(t, verification.PurposeLogin, f.codes.consumed[0].Purpose)
}

/*
TestService_LoginCode_UnknownPhone burns the code, then refuses.

Code verification comes first so a wrong code never reveals whether
the phone is registered.
*/
func TestService_LoginCode_UnknownPhone(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.LoginCode(context.Background(), "13812345678", "123456", "")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
	assert.Len(t, f.codes.consumed, 1)
}

/*
TestService_LoginCode_DisabledAccount refuses a disabled member after the burn.
*/
func TestService_LoginCode_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	account := seedMember(f, "13812345678", "secret123")
	account.Status = member.MemberStatusDisabled

	_, err := f.service.LoginCode(context.Background(), "13812345678", "123456", "")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
	assert.Empty(t, f.auditLog.entries)
}

// # Password Recovery

/*
TestService_ResetPassword replaces the hash after code verification.
*/
func TestService_ResetPassword(t *testing.T) {
	f := newFixture(t)
	account := seedMember(f, "13812345678", "old-password")

	err := f.service.ResetPassword(context.Background(), "13812345678", "123456", "new-password")

	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("new-password", account.PasswordHash))
	require.Len(t, f.codes.consumed, 1)
	assert.Equal(t, verification.PurposeReset, f.codes.consumed[0].Purpose)
}

// # Profile & Identity

/*
TestService_Profile returns the caller's account or a 404.
*/
func TestService_Profile(t *testing.T) {
	f := newFixture(t)
	account := seedMember(f, "13812345678", "secret123")

	got, err := f.service.Profile(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Phone, got.Phone)

	_, err = f.service.Profile(context.Background(), 404)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestService_AttachIdentity verifies then persists the pairing.
*/
func TestService_AttachIdentity(t *testing.T) {
	f := newFixture(t)
	account := seedMember(f, "13812345678", "secret123")

	err := f.service.AttachIdentity(context.Background(), account.ID, "张三", "110105194912310038")

	require.NoError(t, err)
	assert.Equal(t, 1, f.checker.calls)
	assert.True(t, account.IDVerified)
	assert.Equal(t, "张三", account.RealName)

	require.Len(t, f.auditLog.entries, 1)
	assert.Equal(t, audit.ActionVerifyID, f.auditLog.entries[0].Action)
}

/*
TestService_AttachIdentity_Mismatch persists nothing on a failed pairing.
*/
func TestService_AttachIdentity_Mismatch(t *testing.T) {
	f := newFixture(t)
	account := seedMember(f, "13812345678", "secret123")
	f.checker.err = apperr.IdentityMismatch("Name and ID number do not match")

	err := f.service.AttachIdentity(context.Background(), account.ID, "李四", "110105194912310038")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "IDENTITY_MISMATCH", ae.Code)
	assert.False(t, account.IDVerified)
	assert.Empty(t, account.RealName)
}
