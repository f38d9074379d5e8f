package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/troopvault/tv-backend/internal/config"
	"github.com/troopvault/tv-backend/internal/logging"
	"github.com/troopvault/tv-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrOTPCooldown     = errors.New("please wait before requesting another OTP")
	ErrOTPInvalid      = errors.New("invalid or expired OTP")
	ErrOTPMaxAttempts  = errors.New("maximum OTP attempts exceeded")
	ErrRefreshInvalid  = errors.New("invalid or expired refresh token")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid email or password")
	ErrPasswordNotSet  = errors.New("password login not enabled for this account")
)

// UserDirectory is the slice of the store the auth service needs.
type UserDirectory interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
}

// AuthService handles passwordless OTP authentication, a bcrypt password
// path for admin bootstrap accounts, and rotating refresh tokens.
type AuthService struct {
	store          *redisStore
	jwt            *JWTService
	users          UserDirectory
	otpExpiry      time.Duration
	otpCooldown    time.Duration
	otpMaxAttempts int
	refreshExpiry  time.Duration
}

func NewAuthService(redisClient *redis.Client, jwtSvc *JWTService, users UserDirectory, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		store:          newRedisStore(redisClient),
		jwt:            jwtSvc,
		users:          users,
		otpExpiry:      cfg.OTPExpiry,
		otpCooldown:    cfg.OTPCooldown,
		otpMaxAttempts: cfg.OTPMaxAttempts,
		refreshExpiry:  cfg.RefreshExpiry,
	}
}

// LoginPassword verifies a bcrypt password hash. Only accounts seeded with a
// password (council admins) can use this path; everyone else goes through
// OTP.
func (s *AuthService) LoginPassword(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidPassword
	}
	if user.PasswordHash == nil || *user.PasswordHash == "" {
		return "", "", ErrPasswordNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidPassword
	}
	return s.issueTokenPair(ctx, user.ID, user.Email)
}

// RequestOTP generates a 6-digit OTP and returns the plaintext code for
// delivery.
func (s *AuthService) RequestOTP(ctx context.Context, email string) (string, error) {
	if _, err := s.users.GetUserByEmail(ctx, email); err != nil {
		return "", ErrUserNotFound
	}

	on, err := s.store.isOnCooldown(ctx, email)
	if err != nil {
		return "", fmt.Errorf("checking OTP cooldown: %w", err)
	}
	if on {
		return "", ErrOTPCooldown
	}

	code, err := generateOTPCode()
	if err != nil {
		return "", fmt.Errorf("generating OTP: %w", err)
	}

	if err := s.store.storeOTPHash(ctx, email, hashString(code), s.otpExpiry); err != nil {
		return "", fmt.Errorf("storing OTP: %w", err)
	}

	if err := s.store.setCooldown(ctx, email, s.otpCooldown); err != nil {
		return "", fmt.Errorf("setting OTP cooldown: %w", err)
	}

	return code, nil
}

// VerifyOTP checks the OTP code and returns a new access + refresh token pair.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (accessToken, refreshToken string, err error) {
	storedHash, err := s.store.getOTPHash(ctx, email)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrOTPInvalid
		}
		return "", "", fmt.Errorf("retrieving OTP hash: %w", err)
	}

	attempts, err := s.store.incrOTPAttempts(ctx, email, s.otpExpiry)
	if err != nil {
		return "", "", fmt.Errorf("incrementing OTP attempts: %w", err)
	}

	if attempts > int64(s.otpMaxAttempts) {
		_ = s.store.deleteOTP(ctx, email)
		return "", "", ErrOTPMaxAttempts
	}

	if hashString(code) != storedHash {
		if attempts >= int64(s.otpMaxAttempts) {
			_ = s.store.deleteOTP(ctx, email)
			return "", "", ErrOTPMaxAttempts
		}
		return "", "", ErrOTPInvalid
	}

	// remove otp after verifying
	if err := s.store.deleteOTP(ctx, email); err != nil {
		return "", "", fmt.Errorf("deleting OTP: %w", err)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", ErrUserNotFound
	}

	return s.issueTokenPair(ctx, user.ID, user.Email)
}

// Refresh rotates the refresh token and returns a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error) {
	hash := hashString(refreshToken)

	payload, err := s.store.getRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrRefreshInvalid
		}
		return "", "", fmt.Errorf("retrieving refresh token: %w", err)
	}

	userID, email, err := splitRefreshPayload(payload)
	if err != nil {
		return "", "", err
	}

	if err := s.store.deleteRefreshToken(ctx, hash); err != nil {
		return "", "", fmt.Errorf("deleting refresh token: %w", err)
	}

	newAccess, newRefresh, err = s.issueTokenPair(ctx, userID, email)
	if err != nil {
		return "", "", err
	}

	logging.Info("refresh token rotated", "user_id", userID)
	return newAccess, newRefresh, nil
}

// Logout invalidates the refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	hash := hashString(refreshToken)

	payload, err := s.store.getRefreshToken(ctx, hash)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("looking up refresh token: %w", err)
	}

	if err := s.store.deleteRefreshToken(ctx, hash); err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}

	if payload != "" {
		if userID, _, err := splitRefreshPayload(payload); err == nil {
			logging.Info("user logged out", "user_id", userID)
		}
	}
	return nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, userID uuid.UUID, email string) (accessToken, refreshToken string, err error) {
	accessToken, err = s.jwt.GenerateToken(ctx, userID, email)
	if err != nil {
		return "", "", fmt.Errorf("generating access token: %w", err)
	}

	rawRefresh, err := generateRefreshToken()
	if err != nil {
		return "", "", fmt.Errorf("generating refresh token: %w", err)
	}

	payload := userID.String() + "|" + email
	if err := s.store.storeRefreshToken(ctx, hashString(rawRefresh), payload, s.refreshExpiry); err != nil {
		return "", "", fmt.Errorf("storing refresh token: %w", err)
	}

	return accessToken, rawRefresh, nil
}

func splitRefreshPayload(payload string) (uuid.UUID, string, error) {
	for i := 0; i < len(payload); i++ {
		if payload[i] == '|' {
			userID, err := uuid.Parse(payload[:i])
			if err != nil {
				return uuid.Nil, "", fmt.Errorf("invalid user ID in refresh token: %w", err)
			}
			return userID, payload[i+1:], nil
		}
	}
	return uuid.Nil, "", ErrRefreshInvalid
}

// returns random 6-digit string
func generateOTPCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// returns 32 random bytes as a hex string (64 chars).
func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
