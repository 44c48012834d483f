package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/andresuchdata/pharmacare/backend-go/internal/auth"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	AccountIDKey = "account_id"
	RoleKey      = "account_role"
	BearerPrefix = "Bearer "
)

// TokenValidator is satisfied by *auth.JWTService
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the
// account id and role on the context.
func Auth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix)))
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("auth: token rejected")
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "token has expired")
				return
			}
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(RoleKey, string(claims.Role))
		c.Next()
	}
}

// RequireRole allows only the listed roles through
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := domain.Role(c.GetString(RoleKey))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you do not have access to this resource"})
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
