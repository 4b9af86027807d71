package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Aashish23092/statement-parser/dto"
	"github.com/Aashish23092/statement-parser/service"
	"github.com/Aashish23092/statement-parser/storage"
)

type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, storage.ErrDuplicateEmail) {
		sendError(c, http.StatusConflict, "EMAIL_TAKEN", err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("registration failed")
		sendError(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "could not create account")
		return
	}

	c.JSON(http.StatusCreated, dto.UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	token, _, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		sendError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("login failed")
		sendError(c, http.StatusInternalServerError, "LOGIN_FAILED", "could not log in")
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

// sendError sends a structured error response.
func sendError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    statusCode,
	})
}
