package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"stockwise/internal/auth"
	"stockwise/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys set by RequireRole
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"

	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Auth validates access tokens and manages the token cookies
type Auth struct {
	tokens *auth.TokenManager
	// secure switches cookies to SameSite=None; Secure for cross-origin production deployments
	secure bool
}

func NewAuth(tokens *auth.TokenManager, secure bool) *Auth {
	return &Auth{tokens: tokens, secure: secure}
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func (a *Auth) SetTokenCookies(c *gin.Context, accessToken, refreshToken string, refreshTTL time.Duration) {
	a.setSameSite(c)
	c.SetCookie(AccessTokenCookie, accessToken, int(a.tokens.AccessTTL().Seconds()), "/", "", a.secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, int(refreshTTL.Seconds()), "/", "", a.secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func (a *Auth) ClearTokenCookies(c *gin.Context) {
	a.setSameSite(c)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", a.secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", a.secure, true)
}

func (a *Auth) setSameSite(c *gin.Context) {
	if a.secure {
		c.SetSameSite(http.SameSiteNoneMode)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
}

// RequireRole validates the access token and checks the caller's role against allowedRoles.
// With no roles any authenticated user passes.
func (a *Auth) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie(AccessTokenCookie)
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		claims, err := a.tokens.Parse(tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(msg))
			return
		}

		if len(allowedRoles) > 0 && !hasRole(claims.Role, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error("Access denied: insufficient permissions"))
			return
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextUserRole, claims.Role)

		// later log lines of this request carry the caller
		ctx := c.Request.Context()
		logger := zerolog.Ctx(ctx).With().Str("user_id", claims.UserID()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))

		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// UserID returns the authenticated user id, or "" on public routes
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
