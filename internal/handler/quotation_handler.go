package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuotationHandler struct {
	quotationService service.QuotationService
}

func NewQuotationHandler(quotationService service.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

func (h *QuotationHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	quotations := router.Group("/api/quotations", authMW)
	{
		quotations.POST("", h.CreateQuotation)
		quotations.GET("/:id", h.GetQuotation)
		quotations.POST("/:id/submit", h.SubmitQuotation)
	}
}

// CreateQuotation records a supplier's priced response as a draft
// @Summary      Create quotation
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateQuotationRequest  true  "Quotation payload"
// @Success      201      {object}  response.Response{data=model.Quotation}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/quotations [post]
func (h *QuotationHandler) CreateQuotation(c *gin.Context) {
	var req service.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	quotation, err := h.quotationService.CreateQuotation(c.Request.Context(), req, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quotation))
}

// GetQuotation returns one quotation with its items
// @Summary      Get quotation
// @Tags         quotations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quotation ID"
// @Success      200  {object}  response.Response{data=model.Quotation}
// @Failure      404  {object}  response.Response
// @Router       /api/quotations/{id} [get]
func (h *QuotationHandler) GetQuotation(c *gin.Context) {
	quotation, err := h.quotationService.GetQuotation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quotation))
}

// SubmitQuotation moves a draft quotation into its approval stage
// @Summary      Submit quotation for approval
// @Tags         quotations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quotation ID"
// @Success      200  {object}  response.Response{data=model.Quotation}
// @Failure      409  {object}  response.Response
// @Router       /api/quotations/{id}/submit [post]
func (h *QuotationHandler) SubmitQuotation(c *gin.Context) {
	quotation, err := h.quotationService.SubmitQuotation(c.Request.Context(), c.Param("id"), middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quotation))
}
