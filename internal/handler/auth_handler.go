package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/refresh", h.Refresh)
		authRoutes.POST("/logout", h.Logout)
		authRoutes.GET("/me", authMW, h.Me)
	}
}

// Login authenticates by username/password and issues a token pair
// @Summary      Login
// @Description  Authenticates by username and password, returning an access + refresh token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.TokenPairResponse}
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookies(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pair))
}

// Refresh exchanges a refresh token for a new token pair
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  response.Response{data=service.TokenPairResponse}
// @Failure      401      {object}  response.Response
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Fallback to the refresh_token cookie
		if cookie, cookieErr := c.Cookie("refresh_token"); cookieErr == nil && cookie != "" {
			req.RefreshToken = cookie
		} else {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "refresh token is required"))
			return
		}
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookies(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pair))
}

// Logout clears the token cookies
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "logged out"}))
}

// Me returns the authenticated account
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}
