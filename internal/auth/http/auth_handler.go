// Package http provides HTTP middleware and handlers for authentication.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentimeter/sentimeter/internal/auth/http/dto"
	authUseCase "github.com/sentimeter/sentimeter/internal/auth/usecase"
	"github.com/sentimeter/sentimeter/internal/httputil"
	customValidation "github.com/sentimeter/sentimeter/internal/validation"
)

// AuthHandler handles HTTP requests for account registration and login.
type AuthHandler struct {
	authUseCase authUseCase.UseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(authUseCase authUseCase.UseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// RegisterHandler creates a new user account and issues an access token.
// POST /api/register - Returns 201 Created with the token.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := authUseCase.CredentialsInput{
		Email:    req.Email,
		Password: req.Password,
	}

	output, err := h.authUseCase.Register(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTokenToResponse(output))
}

// LoginHandler exchanges credentials for an access token.
// POST /api/login - Returns 200 OK with the token.
// Unknown email and wrong password produce the same 401 response.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := authUseCase.CredentialsInput{
		Email:    req.Email,
		Password: req.Password,
	}

	output, err := h.authUseCase.Login(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenToResponse(output))
}
