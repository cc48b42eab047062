package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/service"
	"procurement/pkg/pagination"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accountService service.AccountService
}

func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	accounts := router.Group("/api/accounts", authMW)
	{
		accounts.POST("", middleware.RequireRank(model.RoleAdmin), h.CreateAccount)
		accounts.GET("", middleware.RequireRank(model.RoleAdmin), h.ListAccounts)
		accounts.GET("/:id", h.GetAccount)
		accounts.PUT("/:id/deactivate", middleware.RequireRank(model.RoleAdmin), h.DeactivateAccount)
	}
}

// CreateAccount creates a new account
// @Summary      Create account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAccountRequest  true  "Account payload"
// @Success      201      {object}  response.Response{data=service.AccountResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req service.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, account))
}

// ListAccounts returns a paginated account list
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	p := pagination.Parse(c)

	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), p.Page, p.Limit, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   accounts,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	})
}

// GetAccount returns one account
// @Summary      Get account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  response.Response{data=service.AccountResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"), middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// DeactivateAccount clears the account's active flag
// @Summary      Deactivate account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  response.Response{data=service.AccountResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/accounts/{id}/deactivate [put]
func (h *AccountHandler) DeactivateAccount(c *gin.Context) {
	account, err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("id"), middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}
