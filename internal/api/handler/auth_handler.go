package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/centralauth/centralauth/internal/api/response"
	"github.com/centralauth/centralauth/internal/core/ports"
)

// AuthHandler handles HTTP requests for the token and session authority.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// The datetime validator guarantees the format parses.
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"date_of_birth": "date_of_birth must match the format 2006-01-02"}}
	}

	userID, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		DateOfBirth: dob,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, "User created successfully", registerResponse{UserID: userID})
}

// Login authenticates a user and returns an access/refresh pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, deviceInput(c))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, "Login successful", tokenPairFromResult(pair))
}

// Refresh exchanges a live refresh token for a new pair, rotating the
// session. A token that already lost the rotation race fails as invalid.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken, deviceInput(c))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, "Token refreshed successfully", tokenPairFromResult(pair))
}

// Logout revokes the presented refresh token. Idempotent.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      logoutRequest  true  "Refresh token"
// @Success      200   {object}  response.Envelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, "Logout successful", logoutResponse{Success: true})
}

// LogoutAll revokes every live session of the authenticated user.
//
// @Summary      Logout everywhere
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Router       /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	count, err := h.authService.LogoutAll(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, "All sessions terminated successfully", logoutAllResponse{
		Success:       true,
		SessionsEnded: count,
	})
}

func tokenPairFromResult(pair *ports.TokenPairResult) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       pair.UserID,
		ExpireAt:     pair.ExpiresAt.Unix(),
	}
}

func deviceInput(c echo.Context) ports.DeviceInput {
	return ports.DeviceInput{
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	}
}
