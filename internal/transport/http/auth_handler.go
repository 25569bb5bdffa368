package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AlexandreFrancony/Bartending-Back/internal/service"
	"github.com/AlexandreFrancony/Bartending-Back/internal/util"
)

const forgotPasswordMessage = "if an account exists for this email, a reset link has been sent"

type AuthHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func RegisterAuth(e *echo.Echo, accounts *service.AccountService, tokens *util.JWTManager, limits RateLimits, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &AuthHandler{accounts: accounts, logger: logger}
	requireAuth := RequireAuth(tokens)

	g := e.Group("/auth")
	g.POST("/register", h.register, limits.Auth)
	g.POST("/login", h.login, limits.Auth)
	g.GET("/me", h.me, limits.General, requireAuth)
	g.GET("/status", h.status, limits.General, OptionalAuth(tokens))
	g.POST("/change-password", h.changePassword, limits.Sensitive, requireAuth)
	g.POST("/forgot-password", h.forgotPassword, limits.Sensitive)
	g.POST("/reset-password", h.resetPassword, limits.Sensitive)
}

// register godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body RegisterRequest true "Registration payload"
// @Success 201 {object} AuthTokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	res, err := h.accounts.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, toAuthTokenResponse(res))
}

// login godoc
// @Summary Log in with username or email
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body LoginRequest true "Credentials"
// @Success 200 {object} AuthTokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	res, err := h.accounts.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toAuthTokenResponse(res))
}

// me godoc
// @Summary Current account
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserEnvelope
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) me(c echo.Context) error {
	identity, ok := CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	user, err := h.accounts.Me(c.Request().Context(), identity.UserID)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}

// status reports the identity carried by the token without touching storage.
func (h *AuthHandler) status(c echo.Context) error {
	identity, ok := CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusOK, AuthStatusResponse{Authenticated: false})
	}
	return c.JSON(http.StatusOK, AuthStatusResponse{
		Authenticated: true,
		User: &UserResponse{
			ID:       identity.UserID.String(),
			Username: identity.Username,
			Email:    identity.Email,
			Role:     string(identity.Role),
		},
	})
}

// changePassword godoc
// @Summary Change the current password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/change-password [post]
func (h *AuthHandler) changePassword(c echo.Context) error {
	identity, ok := CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := h.accounts.ChangePassword(c.Request().Context(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Message("password updated"))
}

// forgotPassword godoc
// @Summary Request a password reset link
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body ForgotPasswordRequest true "Account email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := h.accounts.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Message(forgotPasswordMessage))
}

// resetPassword godoc
// @Summary Set a new password with a reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := h.accounts.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Message("password has been reset"))
}

func toAuthTokenResponse(res *service.AuthResult) AuthTokenResponse {
	return AuthTokenResponse{
		User:      toUserResponse(res.User),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC(),
	}
}
