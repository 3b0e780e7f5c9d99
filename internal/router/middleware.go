package router

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"librarydesk/internal/auth"
	"librarydesk/internal/errors"
)

// RequireAccessToken runs after the JWT middleware. It rejects refresh tokens
// and blacklisted access tokens, and stores username and role on the context.
func RequireAccessToken(tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthorized("missing token")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.Kind != auth.KindAccess || claims.Username == "" {
				return unauthorized("invalid token")
			}
			if claims.ID != "" {
				// Redis outages fail open; the token is still signature checked.
				if revoked, err := tokens.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID); err == nil && revoked {
					return unauthorized("token revoked")
				}
			}
			c.Set("username", claims.Username)
			c.Set("role", claims.Role)
			return next(c)
		}
	}
}

// RequireRole aborts with 403 unless the role stored by RequireAccessToken is one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Error: "forbidden",
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

func unauthorized(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: msg,
		Code:  "UNAUTHORIZED",
	})
}
