// Package middleware implements the request guard chain: authentication via
// signed identity tokens, then per-route role authorization. Guards run
// strictly in order and each can short-circuit the request; a handler only
// runs after every guard on its route has passed.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"edusphere/internal/token"
	"edusphere/internal/users"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// TokenVerifier validates a presented credential and resolves its claims
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// RoleRegistry is the authoritative lookup of a user's current role
type RoleRegistry interface {
	RoleOf(ctx context.Context, email string) (users.Role, error)
}

// RequireAuth validates the bearer token and injects the caller's email into
// the request context. Missing, malformed, tampered, and expired tokens all
// answer 401.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(authHeader, bearerPrefix)
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: missing bearer token",
			})
			return
		}

		claims, err := verifier.Verify(raw)
		if err != nil {
			slog.Warn("Rejected credential",
				"error", err.Error(),
				"request_id", c.GetString("request_id"),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: invalid or expired token",
			})
			return
		}

		c.Set("email", claims.Email)
		c.Next()
	}
}

// RequireRole authorizes the authenticated caller against the given roles.
// The role is re-read from storage on every request; the token is never
// trusted for it, so an admin's role change is observed immediately.
//
// "admin OR tutor" routes pass both roles to one guard; chaining two
// RequireRole calls would demand both roles at once and lock everyone out.
func RequireRole(registry RoleRegistry, roles ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")
		if email == "" {
			// RequireAuth must run first on the chain
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: not authenticated",
			})
			return
		}

		role, err := registry.RoleOf(c.Request.Context(), email)
		if err != nil {
			// An identity without a profile record holds no role at all;
			// that is a 403 like any mismatch, not a 404.
			if err == users.ErrUserNotFound {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "forbidden: no role granted",
				})
				return
			}
			slog.Error("Role lookup failed",
				"email", email,
				"error", err.Error(),
				"request_id", c.GetString("request_id"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to resolve role",
			})
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Set("role", role.String())
				c.Next()
				return
			}
		}

		slog.Warn("Role check failed",
			"email", email,
			"role", role.String(),
			"request_id", c.GetString("request_id"),
		)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "forbidden: insufficient role",
		})
	}
}
