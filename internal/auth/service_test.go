package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/config"
	"github.com/troopvault/tv-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// fakeDirectory is an in-memory UserDirectory keyed by email.
type fakeDirectory struct {
	users map[string]store.User
}

func (f *fakeDirectory) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return store.User{}, errors.New("no rows in result set")
}

type serviceFixture struct {
	svc   *auth.AuthService
	redis *miniredis.Miniredis
	dir   *fakeDirectory
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	jwtSvc, err := auth.NewJWTService([]byte("test-signing-key"), "test-issuer", 15*time.Minute)
	require.NoError(t, err)

	dir := &fakeDirectory{users: make(map[string]store.User)}
	svc := auth.NewAuthService(client, jwtSvc, dir, config.AuthConfig{
		OTPExpiry:      5 * time.Minute,
		OTPCooldown:    60 * time.Second,
		OTPMaxAttempts: 3,
		RefreshExpiry:  7 * 24 * time.Hour,
	})

	return &serviceFixture{svc: svc, redis: mr, dir: dir}
}

func (f *serviceFixture) addUser(email string) store.User {
	u := store.User{ID: uuid.New(), Email: email, FullName: "Test User"}
	f.dir.users[email] = u
	return u
}

func (f *serviceFixture) addUserWithPassword(t *testing.T, email, password string) store.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)
	u := store.User{ID: uuid.New(), Email: email, FullName: "Test Admin", PasswordHash: &hashStr}
	f.dir.users[email] = u
	return u
}

func TestAuthService_RequestOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("returns OTP code", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUser("otp-code@example.com")

		code, err := f.svc.RequestOTP(ctx, user.Email)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^\d{6}$`, code)
	})

	t.Run("unknown email returns ErrUserNotFound", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.RequestOTP(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("cooldown blocks second request", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUser("otp-cooldown@example.com")

		_, err := f.svc.RequestOTP(ctx, user.Email)
		require.NoError(t, err)

		_, err = f.svc.RequestOTP(ctx, user.Email)
		assert.ErrorIs(t, err, auth.ErrOTPCooldown)
	})

	t.Run("cooldown expiry allows another request", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUser("otp-expire@example.com")

		_, err := f.svc.RequestOTP(ctx, user.Email)
		require.NoError(t, err)

		f.redis.FastForward(2 * time.Minute)

		_, err = f.svc.RequestOTP(ctx, user.Email)
		require.NoError(t, err)
	})
}

func TestAuthService_VerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code returns token pair", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUser("verify@example.com")

		code, err := f.svc.RequestOTP(ctx, user.Email)
		require.NoError(t, err)

		access, refresh, err := f.svc.VerifyOTP(ctx, user.Email, code)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.Len(t, refresh, 64) // 32 bytes as hex
	})

	t.Run("wrong code returns ErrOTPInvalid", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUser("wrong@example.com")

		code, err := f.svc.RequestOTP(ctx, user.Email)
		require.NoError(t, err)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		_, _, err = f.svc.VerifyOTP(ctx, user.Email, wrong)
		assert.ErrorIs(t, err, auth.ErrOTPInvalid)
	})

	t.Run("max attempts locks the code", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUser("attempts@example.com")

		code, err := f.svc.RequestOTP(ctx, user.Email)
		require.NoError(t, err)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		for i := 0; i < 2; i++ {
			_, _, err = f.svc.VerifyOTP(ctx, user.Email, wrong)
			require.ErrorIs(t, err, auth.ErrOTPInvalid)
		}
		_, _, err = f.svc.VerifyOTP(ctx, user.Email, wrong)
		require.ErrorIs(t, err, auth.ErrOTPMaxAttempts)

		// even the right code is dead now
		_, _, err = f.svc.VerifyOTP(ctx, user.Email, code)
		assert.ErrorIs(t, err, auth.ErrOTPInvalid)
	})

	t.Run("code is single use", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUser("single-use@example.com")

		code, err := f.svc.RequestOTP(ctx, user.Email)
		require.NoError(t, err)

		_, _, err = f.svc.VerifyOTP(ctx, user.Email, code)
		require.NoError(t, err)

		_, _, err = f.svc.VerifyOTP(ctx, user.Email, code)
		assert.ErrorIs(t, err, auth.ErrOTPInvalid)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh token", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUser("refresh@example.com")

		code, err := f.svc.RequestOTP(ctx, user.Email)
		require.NoError(t, err)
		_, refresh, err := f.svc.VerifyOTP(ctx, user.Email, code)
		require.NoError(t, err)

		newAccess, newRefresh, err := f.svc.Refresh(ctx, refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEqual(t, refresh, newRefresh)

		// the old token is invalid after rotation
		_, _, err = f.svc.Refresh(ctx, refresh)
		assert.ErrorIs(t, err, auth.ErrRefreshInvalid)
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		_, _, err := f.svc.Refresh(ctx, "bogus-token")
		assert.ErrorIs(t, err, auth.ErrRefreshInvalid)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	user := f.addUser("logout@example.com")

	code, err := f.svc.RequestOTP(ctx, user.Email)
	require.NoError(t, err)
	_, refresh, err := f.svc.VerifyOTP(ctx, user.Email, code)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, refresh))

	_, _, err = f.svc.Refresh(ctx, refresh)
	assert.ErrorIs(t, err, auth.ErrRefreshInvalid)
}

func TestAuthService_LoginPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("valid password returns token pair", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUserWithPassword(t, "admin@example.com", "council-secret")

		access, refresh, err := f.svc.LoginPassword(ctx, user.Email, "council-secret")
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUserWithPassword(t, "admin2@example.com", "council-secret")

		_, _, err := f.svc.LoginPassword(ctx, user.Email, "guess")
		assert.ErrorIs(t, err, auth.ErrInvalidPassword)
	})

	t.Run("OTP-only account cannot use password login", func(t *testing.T) {
		f := newServiceFixture(t)
		user := f.addUser("scout@example.com")

		_, _, err := f.svc.LoginPassword(ctx, user.Email, "anything")
		assert.ErrorIs(t, err, auth.ErrPasswordNotSet)
	})
}
