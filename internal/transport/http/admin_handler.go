package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
	"github.com/AlexandreFrancony/Bartending-Back/internal/service"
	"github.com/AlexandreFrancony/Bartending-Back/internal/util"
)

type AdminHandler struct {
	admin  *service.UserAdminService
	logger *slog.Logger
}

func RegisterAdmin(e *echo.Echo, admin *service.UserAdminService, tokens *util.JWTManager, limits RateLimits, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &AdminHandler{admin: admin, logger: logger}
	requireAuth := RequireAuth(tokens)
	requireAdmin := RequireRole(domain.RoleAdmin)

	e.GET("/admin/users", h.listUsers, limits.General, requireAuth, requireAdmin)
	e.GET("/admin/stats", h.stats, limits.General, requireAuth, requireAdmin)
	e.PATCH("/admin/users/:id/role", h.updateRole, limits.Sensitive, requireAuth, requireAdmin)
	e.DELETE("/admin/users/:id", h.deleteUser, limits.Sensitive, requireAuth, requireAdmin)
}

// listUsers godoc
// @Summary List accounts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} UsersListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) listUsers(c echo.Context) error {
	limit, offset := parsePagination(c)
	res, err := h.admin.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	users := make([]UserResponse, 0, len(res.Users))
	for i := range res.Users {
		users = append(users, toUserResponse(&res.Users[i]))
	}
	return c.JSON(http.StatusOK, UsersListResponse{
		Users: users,
		Meta:  UsersMeta{Limit: res.Limit, Offset: res.Offset, Count: len(users)},
	})
}

// stats godoc
// @Summary Account statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatsResponse
// @Router /admin/stats [get]
func (h *AdminHandler) stats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, StatsResponse{Stats: *stats})
}

// updateRole godoc
// @Summary Change an account role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param payload body UpdateRoleRequest true "New role"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id}/role [patch]
func (h *AdminHandler) updateRole(c echo.Context) error {
	actor, ok := CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	var req UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	user, err := h.admin.UpdateRole(c.Request().Context(), actor, id, req.Role)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}

// deleteUser godoc
// @Summary Delete an account
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) deleteUser(c echo.Context) error {
	actor, ok := CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	if err := h.admin.DeleteUser(c.Request().Context(), actor, id); err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Message("user deleted"))
}

// parsePagination leaves range checks to the service.
func parsePagination(c echo.Context) (int, int) {
	var limit, offset int
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}
