package middleware

import (
	"net/http"
	"strings"

	"procurement/internal/cache"
	"procurement/internal/service"
	"procurement/internal/token"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	ctxUserID    = "userID"
	ctxUserRole  = "userRole"
	ctxRawToken  = "rawToken"
	bearerPrefix = "Bearer "
)

// AuthMiddleware validates bearer tokens against the signing key and the
// revocation list.
type AuthMiddleware struct {
	tokens    *token.Manager
	blacklist cache.TokenBlacklist
}

func NewAuthMiddleware(tokens *token.Manager, blacklist cache.TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, blacklist: blacklist}
}

// RequireAuth rejects the request with 401 unless it carries a valid,
// unrevoked token. It stores the caller's id and role in the context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))

		claims, err := am.tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		revoked, err := am.blacklist.IsRevoked(c.Request.Context(), tokenString)
		if err != nil {
			log.WithError(err).Error("failed to check token blacklist")
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify token"))
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Token has been revoked"))
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxUserRole, claims.Role)
		c.Set(ctxRawToken, tokenString)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ctxUserRole)
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// ActorFromContext returns the caller authenticated by RequireAuth.
func ActorFromContext(c *gin.Context) (service.Actor, bool) {
	value, exists := c.Get(ctxUserID)
	if !exists {
		return service.Actor{}, false
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: id, Role: c.GetString(ctxUserRole)}, true
}

// TokenFromContext returns the raw bearer token of the current request.
func TokenFromContext(c *gin.Context) string {
	return c.GetString(ctxRawToken)
}
