package middleware

import (
	"net/http"
	"strings"

	"procurement/internal/auth"
	"procurement/internal/model"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

const accountKey = "account"

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if gin.Mode() == gin.ReleaseMode {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if gin.Mode() == gin.ReleaseMode {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// RequireAuth validates the bearer token and resolves the caller's account.
// The pipeline runs before any handler logic: token -> claims -> account.
// Failures abort with 401 and a generic message.
func RequireAuth(tokens *auth.TokenService, resolver *auth.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid or expired token"))
			return
		}

		account, err := resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// RequireRank gates a route to accounts ranking at or above minRole. Must run
// after RequireAuth.
func RequireRank(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := CurrentAccount(c)
		if account == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		if err := auth.RequireRank(account, minRole); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

// CurrentAccount returns the account resolved by RequireAuth, or nil.
func CurrentAccount(c *gin.Context) *model.Account {
	if v, ok := c.Get(accountKey); ok {
		if account, ok := v.(*model.Account); ok {
			return account
		}
	}
	return nil
}
