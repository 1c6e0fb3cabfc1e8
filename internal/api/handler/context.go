package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/ticketing/user-service/internal/api/middleware"
	"github.com/ticketing/user-service/internal/core/domain"
)

// requestContext returns the request context carrying the caller injected by
// the Auth middleware, so the service can stamp audit events with it.
func requestContext(c echo.Context) context.Context {
	ctx := c.Request().Context()
	if username, _ := c.Get(middleware.ContextUsername).(string); username != "" {
		ctx = domain.WithActor(ctx, username)
	}
	return ctx
}
