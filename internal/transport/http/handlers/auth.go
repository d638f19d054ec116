package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/domain"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/security"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/transport/http/middleware"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/usecase"
)

// AuthHandler exposes registration, login, and token validation endpoints.
type AuthHandler struct {
	auth     *usecase.AuthService
	tokenTTL time.Duration
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, tokenTTL: tokenTTL}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// chains ahead of the login and register handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares, registerMiddlewares []gin.HandlerFunc) {
	registerChain := append([]gin.HandlerFunc{}, registerMiddlewares...)
	registerChain = append(registerChain, h.register)
	r.POST("/register", registerChain...)

	loginChain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	loginChain = append(loginChain, h.login)
	r.POST("/login", loginChain...)

	r.POST("/validate", h.validate)
	r.GET("/me", middleware.RequireAuth(h.auth), h.me)
}

func accountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Email:     account.Email,
		Username:  account.Username,
		FullName:  account.FullName,
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt,
	}
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	account, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: strings.TrimSpace(req.FullName),
	})
	if err != nil {
		var policyErr *security.PasswordValidationError
		switch {
		case errors.As(err, &policyErr):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, policyErr.Message))
		case errors.Is(err, usecase.ErrDuplicateAccount):
			c.JSON(http.StatusConflict, NewErrorResponse(c, "account already exists"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "registration failed"))
		}
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{Account: accountResponse(account)})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	token, account, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrInactiveAccount, Status: http.StatusForbidden, Message: "account is not active"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokenTTL.Seconds()),
		Account:     accountResponse(account),
	})
}

func (h *AuthHandler) validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid validation payload"))
		return
	}

	identity, err := h.auth.Validate(c.Request.Context(), req.Token)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrExpiredToken, Status: http.StatusUnauthorized, Message: "token expired"},
			{Err: usecase.ErrInvalidSignature, Status: http.StatusUnauthorized, Message: "invalid token signature"},
			{Err: usecase.ErrMalformedToken, Status: http.StatusUnauthorized, Message: "malformed token"},
			{Err: usecase.ErrUnknownSubject, Status: http.StatusUnauthorized, Message: "unknown token subject"},
			{Err: usecase.ErrInactiveAccount, Status: http.StatusForbidden, Message: "account is not active"},
		}, http.StatusInternalServerError, "token validation failed")
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Valid:   true,
		Account: accountResponse(identity.Account),
		Roles:   identity.Roles,
	})
}

func (h *AuthHandler) me(c *gin.Context) {
	accountVal, exists := c.Get("account")
	if !exists {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	account, ok := accountVal.(domain.Account)
	if !ok {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "invalid account context"))
		return
	}

	roles, _ := c.Get("roles")
	roleList, _ := roles.([]string)

	c.JSON(http.StatusOK, MeResponse{
		Account: accountResponse(account),
		Roles:   roleList,
	})
}
