package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RBAC lets the request through when any of the caller's roles matches one
// of allowedRoles, ignoring case.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get(ContextRoles).([]string)
			for _, role := range roles {
				if _, ok := allowed[strings.ToLower(role)]; ok {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}
