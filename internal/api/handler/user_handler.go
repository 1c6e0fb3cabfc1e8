package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketing/user-service/internal/api/metrics"
	"github.com/ticketing/user-service/internal/core/domain"
	"github.com/ticketing/user-service/internal/core/ports"
)

// UserHandler handles HTTP requests for user lifecycle operations. Errors are
// returned to the router's HTTP error handler for mapping.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/v1/users.
//
// @Summary      List active users
// @Description  Returns every non-deleted user ordered by first name, descending.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListAllUsers(requestContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(users))
}

// Get handles GET /api/v1/users/:username.
//
// @Summary      Get an active user by username
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  userResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/v1/users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.FindByUserName(requestContext(c), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

// ListByRole handles GET /api/v1/users/roles/:role.
//
// @Summary      List active users by role
// @Description  Role description is matched case-insensitively.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "Role description (e.g. Manager)"
// @Success      200   {object}  listUsersResponse
// @Router       /api/v1/users/roles/{role} [get]
func (h *UserHandler) ListByRole(c echo.Context) error {
	users, err := h.service.ListAllByRole(requestContext(c), c.Param("role"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(users))
}

// Create handles POST /api/v1/users.
//
// @Summary      Create a user
// @Description  The account is always created enabled and mirrored to the identity provider.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /api/v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.Save(requestContext(c), createToPayload(req))
	if user != nil {
		metrics.UsersCreatedTotal.WithLabelValues(user.Role.Description).Inc()
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(*user))
}

// Update handles PUT /api/v1/users.
//
// @Summary      Update a user
// @Description  The target is selected by user_name; the stored id is always kept.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateUserRequest  true  "User details"
// @Success      200   {object}  userResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/v1/users [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.Update(requestContext(c), updateToPayload(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

// Delete handles DELETE /api/v1/users/:username as a governed soft delete.
//
// @Summary      Soft-delete a user
// @Description  Managers with live projects and employees with live tasks cannot be deleted.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  messageResponse
// @Failure      409       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Failure      502       {object}  errorResponse
// @Router       /api/v1/users/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	err := h.service.Delete(requestContext(c), c.Param("username"))

	var bre *domain.BusinessRuleError
	switch {
	case errors.As(err, &bre):
		metrics.DeletionsRejectedTotal.WithLabelValues(bre.Reason).Inc()
		return err
	case err == nil, errors.Is(err, domain.ErrIdentitySync):
		metrics.UsersDeletedTotal.WithLabelValues("soft").Inc()
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

// Purge handles DELETE /api/v1/users/:username/purge, an unconditional hard delete.
//
// @Summary      Permanently remove a user
// @Description  Administrative removal without eligibility checks or identity sync.
// @Tags         users
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Success      204
// @Router       /api/v1/users/{username}/purge [delete]
func (h *UserHandler) Purge(c echo.Context) error {
	if err := h.service.DeleteByUserName(requestContext(c), c.Param("username")); err != nil {
		return err
	}
	metrics.UsersDeletedTotal.WithLabelValues("purge").Inc()
	return c.NoContent(http.StatusNoContent)
}
