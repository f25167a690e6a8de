package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sendOTPRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type otpLoginRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Code  string `json:"code" validate:"required,len=6"`
}

type loginResponse struct {
	Tokens ports.TokenPair `json:"tokens"`
	User   *domain.User    `json:"user,omitempty"`
}

// Login authenticates a tenant user with email and password.
//
// @Summary      Password login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Tokens: tokens, User: user})
}

// RootLogin authenticates the platform root account.
//
// @Summary      Root login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Root credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/root/login [post]
func (h *AuthHandler) RootLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, err := h.authService.RootLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Tokens: tokens})
}

// SendOTP issues a one-time login code to a registered phone.
//
// @Summary      Send login OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      sendOTPRequest  true  "Phone number"
// @Success      202   {object}  map[string]bool
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/otp/send [post]
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.SendOTP(c.Request().Context(), req.Phone); err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, map[string]bool{"success": true})
}

// OTPLogin exchanges a one-time code for a token pair.
//
// @Summary      OTP login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      otpLoginRequest  true  "Phone and code"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/otp/login [post]
func (h *AuthHandler) OTPLogin(c echo.Context) error {
	var req otpLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, user, err := h.authService.LoginWithOTP(c.Request().Context(), req.Phone, req.Code)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Tokens: tokens, User: user})
}

// RevokeRootTokens invalidates every outstanding root token, including the
// one authorizing this call.
//
// @Summary      Revoke all root tokens
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]int64
// @Failure      403  {object}  map[string]string
// @Router       /api/root/revoke-tokens [post]
func (h *AuthHandler) RevokeRootTokens(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if !principal.IsRoot() {
		return echo.NewHTTPError(http.StatusForbidden, "root account required")
	}

	version, err := h.authService.RevokeRootTokens(c.Request().Context(), principal.Subject)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int64{"tokenVersion": version})
}
