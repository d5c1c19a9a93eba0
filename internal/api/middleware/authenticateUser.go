package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Wal-20/roomchat/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const (
	userIDKey   = "userID"
	usernameKey = "username"

	// browsers cannot set headers on a websocket handshake
	tokenQueryParam = "access_token"
	maxClaimCache   = 5 * time.Minute
)

type authOptions struct {
	allowQueryToken bool
}

type AuthOption func(*authOptions)

// AllowQueryToken also accepts the token from the access_token query parameter.
// Only the websocket handshake needs it.
func AllowQueryToken() AuthOption {
	return func(o *authOptions) { o.allowQueryToken = true }
}

// AuthMiddleware authenticates the bearer token and stores the caller's id in the gin context.
func AuthMiddleware(secret string, authCache *cache.Cache, opts ...AuthOption) gin.HandlerFunc {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c, o.allowQueryToken)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			return
		}

		var claims *utils.Claims
		if cached, found := authCache.Get(tokenString); found {
			claims = cached.(*utils.Claims)
		} else {
			var err error
			claims, err = utils.ValidateJWTToken(secret, tokenString)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				return
			}
			ttl := min(maxClaimCache, time.Until(claims.ExpiresAt.Time))
			if ttl > 0 {
				authCache.Set(tokenString, claims, ttl)
			}
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(usernameKey, claims.Username)
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			return "", false
		}
		return token, true
	}
	if !allowQuery {
		return "", false
	}
	if token := c.Query(tokenQueryParam); token != "" {
		return token, true
	}
	return "", false
}

// UserID returns the id AuthMiddleware stored for the request.
func UserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}
