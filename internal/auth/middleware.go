// internal/auth/middleware.go
// JWT authentication middleware

package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/skillbarter/backend/internal/common/utils"
)

// Middleware validates bearer tokens on protected routes
type Middleware struct {
	secret string
	redis  *redis.Client
}

// NewMiddleware creates authentication middleware
func NewMiddleware(secret string, redisClient *redis.Client) *Middleware {
	return &Middleware{secret: secret, redis: redisClient}
}

// Authenticate rejects requests without a valid access token and puts the
// user's identity in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := utils.ValidateJWT(parts[1], m.secret)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if claims.Type != "access" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
			return
		}

		if m.revoked(r, claims) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Token has been revoked")
			return
		}

		ctx := utils.ContextWithUserID(r.Context(), claims.UserID)
		ctx = utils.ContextWithUserEmail(ctx, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// revoked checks the sign-out-everywhere cutoff. Redis being down fails
// open: the token still expires on its own schedule.
func (m *Middleware) revoked(r *http.Request, claims *utils.JWTClaims) bool {
	if m.redis == nil {
		return false
	}

	val, err := m.redis.Get(r.Context(), revocationKey(claims.UserID)).Result()
	if err != nil {
		return false
	}

	cutoff, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false
	}
	return claims.IssuedAt < cutoff
}
