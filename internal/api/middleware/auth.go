package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth.
const (
	ContextUsername = "username"
	ContextRoles    = "roles"
)

// Claims accepts both locally issued tokens (username, role) and
// identity-provider tokens (preferred_username, realm_access.roles).
type Claims struct {
	Username          string `json:"username,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Role              string `json:"role,omitempty"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	jwt.RegisteredClaims
}

// Subject returns the caller's username.
func (c *Claims) Subject() string {
	if c.Username != "" {
		return c.Username
	}
	return c.PreferredUsername
}

// Roles merges the single role claim with the realm roles.
func (c *Claims) Roles() []string {
	roles := make([]string, 0, len(c.RealmAccess.Roles)+1)
	if c.Role != "" {
		roles = append(roles, c.Role)
	}
	return append(roles, c.RealmAccess.Roles...)
}

// Auth validates an HS256 bearer token and injects the caller into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := &Claims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextUsername, claims.Subject())
			c.Set(ContextRoles, claims.Roles())

			return next(c)
		}
	}
}
