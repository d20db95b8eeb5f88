package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/service"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store/memory"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

func newTestAuthService(t *testing.T, ttl time.Duration) *service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	rid, sid := int64(1), int64(4)
	users := memory.NewUserStore(
		store.UserRecord{UserID: 10, Username: "john_resident", PasswordHash: hash, Role: types.RoleResident, ResidentID: &rid, FullName: "John Tan"},
		store.UserRecord{UserID: 11, Username: "jane_staff", PasswordHash: hash, Role: types.RoleStaff, StaffID: &sid},
	)
	return service.NewAuthService(users, service.AuthConfig{Secret: []byte("test-secret"), TTL: ttl}, zerolog.Nop())
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	resp, err := svc.Login(context.Background(), types.LoginRequest{Username: "john_resident", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, types.RoleResident, resp.Role)
	require.NotNil(t, resp.ResidentID)
	assert.Equal(t, int64(1), *resp.ResidentID)

	claims, err := svc.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(10), claims.UserID)
	assert.True(t, claims.OwnsResident(1))
	assert.False(t, claims.OwnsResident(2))
	assert.False(t, claims.OwnsStaff(1))
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	_, err := svc.Login(context.Background(), types.LoginRequest{Username: "john_resident", Password: "nope"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), types.LoginRequest{Username: "ghost", Password: "password123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_MissingFields(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	_, err := svc.Login(context.Background(), types.LoginRequest{})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	var mf *service.MissingFieldsError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, []string{"username", "password"}, mf.Fields)
}

// ── Verify / Logout ──────────────────────────────────────────────────────────

func TestVerify_RejectsExpiredAndForeignTokens(t *testing.T) {
	svc := newTestAuthService(t, -time.Minute)
	resp, err := svc.Login(context.Background(), types.LoginRequest{Username: "jane_staff", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Verify(resp.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = svc.Verify("not.a.jwt")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogout_RevokesToken(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)
	resp, err := svc.Login(context.Background(), types.LoginRequest{Username: "jane_staff", Password: "password123"})
	require.NoError(t, err)

	claims, err := svc.Verify(resp.Token)
	require.NoError(t, err)
	assert.True(t, claims.OwnsStaff(4))

	svc.Logout(claims)
	_, err = svc.Verify(resp.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestCurrentUser(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)
	resp, err := svc.Login(context.Background(), types.LoginRequest{Username: "john_resident", Password: "password123"})
	require.NoError(t, err)
	claims, err := svc.Verify(resp.Token)
	require.NoError(t, err)

	u, err := svc.CurrentUser(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "John Tan", u.FullName)
}
