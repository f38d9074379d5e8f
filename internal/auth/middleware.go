package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	UserClaimsKey contextKey = "user_claims"
)

// AuthenticatedUser is the request-scoped identity placed in context by the
// middleware. Troop role is resolved per request by handlers, since a user
// holds one role per troop, not one role globally.
type AuthenticatedUser struct {
	ID    uuid.UUID
	Email string
}

type Authenticator struct {
	jwtService *JWTService
	users      UserDirectory
}

func NewAuthenticator(jwtService *JWTService, users UserDirectory) *Authenticator {
	return &Authenticator{
		jwtService: jwtService,
		users:      users,
	}
}

// Middleware validates the bearer token and stores the authenticated user
// in the request context. Requests without a valid token pass through
// unauthenticated; the authorization gate turns the missing identity into a
// 401 so the distinction between "no session" and "no privilege" stays with
// the policy layer.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		const bearerPrefix = "Bearer "
		if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		claims, err := a.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user := &AuthenticatedUser{ID: claims.UserID, Email: claims.Email}
		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserClaimsKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, bool) {
	user, ok := ctx.Value(UserClaimsKey).(*AuthenticatedUser)
	return user, ok
}

// WithAuthenticatedUser seeds a context with an identity. Used by tests and
// the worker entrypoints.
func WithAuthenticatedUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	return context.WithValue(ctx, UserClaimsKey, user)
}
