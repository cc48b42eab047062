package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/pkg/pagination"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type SupplierHandler struct {
	supplierService service.SupplierService
}

func NewSupplierHandler(supplierService service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	suppliers := router.Group("/api/suppliers", authMW)
	{
		suppliers.POST("", h.RegisterSupplier)
		suppliers.GET("", h.ListSuppliers)
		suppliers.GET("/:id", h.GetSupplier)
	}
}

// RegisterSupplier creates a pending supplier and opens its approval
// @Summary      Register supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RegisterSupplierRequest  true  "Supplier payload"
// @Success      201      {object}  response.Response{data=model.Supplier}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/suppliers [post]
func (h *SupplierHandler) RegisterSupplier(c *gin.Context) {
	var req service.RegisterSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	supplier, err := h.supplierService.RegisterSupplier(c.Request.Context(), req, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// ListSuppliers returns suppliers, optionally filtered by status
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Limit"
// @Success      200     {object}  response.Response
// @Router       /api/suppliers [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	p := pagination.Parse(c)

	suppliers, total, err := h.supplierService.ListSuppliers(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   suppliers,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	})
}

// GetSupplier returns one supplier
// @Summary      Get supplier
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  response.Response{data=model.Supplier}
// @Failure      404  {object}  response.Response
// @Router       /api/suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.supplierService.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}
