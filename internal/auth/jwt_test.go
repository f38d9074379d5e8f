package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troopvault/tv-backend/internal/auth"
)

func newTestJWTService(t *testing.T, expiry time.Duration) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService([]byte("test-signing-key"), "test-issuer", expiry)
	require.NoError(t, err)
	return svc
}

func TestJWTRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService(t, 15*time.Minute)

	userID := uuid.New()
	token, err := svc.GenerateToken(ctx, userID, "scout@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "scout@example.com", claims.Email)
}

func TestJWTExpiredTokenRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService(t, -1*time.Minute)

	token, err := svc.GenerateToken(ctx, uuid.New(), "scout@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestJWTWrongKeyRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService(t, 15*time.Minute)

	other, err := auth.NewJWTService([]byte("a-different-key"), "test-issuer", 15*time.Minute)
	require.NoError(t, err)

	token, err := svc.GenerateToken(ctx, uuid.New(), "scout@example.com")
	require.NoError(t, err)

	_, err = other.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestJWTWrongIssuerRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService(t, 15*time.Minute)

	other, err := auth.NewJWTService([]byte("test-signing-key"), "other-issuer", 15*time.Minute)
	require.NoError(t, err)

	token, err := svc.GenerateToken(ctx, uuid.New(), "scout@example.com")
	require.NoError(t, err)

	_, err = other.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestJWTGarbageRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService(t, 15*time.Minute)

	_, err := svc.ValidateToken(ctx, "not-a-token")
	assert.Error(t, err)
}
