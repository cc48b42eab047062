package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/repository"
	"procurement/internal/service"
	"procurement/pkg/pagination"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type RFQHandler struct {
	rfqService       service.RFQService
	quotationService service.QuotationService
}

func NewRFQHandler(rfqService service.RFQService, quotationService service.QuotationService) *RFQHandler {
	return &RFQHandler{rfqService: rfqService, quotationService: quotationService}
}

func (h *RFQHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	rfqs := router.Group("/api/rfqs", authMW)
	{
		rfqs.POST("", h.CreateRFQ)
		rfqs.GET("", h.ListRFQs)
		rfqs.GET("/:id", h.GetRFQ)
		rfqs.PUT("/:id", h.UpdateRFQ)
		rfqs.POST("/:id/submit", h.SubmitRFQ)
		rfqs.POST("/:id/finalize", h.FinalizeRFQ)
		rfqs.GET("/:id/final-decision", h.GetFinalDecision)
		rfqs.GET("/:id/quotations", h.ListQuotations)
	}
}

// CreateRFQ creates a draft RFQ with line items
// @Summary      Create RFQ
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRFQRequest  true  "RFQ payload"
// @Success      201      {object}  response.Response{data=model.RFQ}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/rfqs [post]
func (h *RFQHandler) CreateRFQ(c *gin.Context) {
	var req service.CreateRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	rfq, err := h.rfqService.CreateRFQ(c.Request.Context(), req, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rfq))
}

// ListRFQs returns RFQs, optionally filtered by status or requester
// @Summary      List RFQs
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        status        query     string  false  "Status filter"
// @Param        requester_id  query     string  false  "Requester filter"
// @Param        page          query     int     false  "Page"
// @Param        limit         query     int     false  "Limit"
// @Success      200           {object}  response.Response
// @Router       /api/rfqs [get]
func (h *RFQHandler) ListRFQs(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.RFQFilter{
		Status:      c.Query("status"),
		RequesterID: c.Query("requester_id"),
		Page:        p.Page,
		Limit:       p.Limit,
	}

	rfqs, total, err := h.rfqService.ListRFQs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   rfqs,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	})
}

// GetRFQ returns one RFQ with items, quotations and final decision
// @Summary      Get RFQ
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {object}  response.Response{data=model.RFQ}
// @Failure      404  {object}  response.Response
// @Router       /api/rfqs/{id} [get]
func (h *RFQHandler) GetRFQ(c *gin.Context) {
	rfq, err := h.rfqService.GetRFQ(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// UpdateRFQ edits a draft RFQ
// @Summary      Update RFQ
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "RFQ ID"
// @Param        payload  body      service.UpdateRFQRequest  true  "RFQ payload"
// @Success      200      {object}  response.Response{data=model.RFQ}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/rfqs/{id} [put]
func (h *RFQHandler) UpdateRFQ(c *gin.Context) {
	var req service.UpdateRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	rfq, err := h.rfqService.UpdateRFQ(c.Request.Context(), c.Param("id"), req, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// SubmitRFQ moves a draft RFQ into the approval chain
// @Summary      Submit RFQ for approval
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {object}  response.Response{data=model.RFQ}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/rfqs/{id}/submit [post]
func (h *RFQHandler) SubmitRFQ(c *gin.Context) {
	rfq, err := h.rfqService.SubmitRFQ(c.Request.Context(), c.Param("id"), middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// FinalizeRFQ creates the final decision and closes the RFQ
// @Summary      Finalize RFQ
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "RFQ ID"
// @Param        payload  body      service.FinalizeRFQRequest  true  "Final decision payload"
// @Success      201      {object}  response.Response{data=model.FinalDecision}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/rfqs/{id}/finalize [post]
func (h *RFQHandler) FinalizeRFQ(c *gin.Context) {
	var req service.FinalizeRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	decision, err := h.rfqService.FinalizeRFQ(c.Request.Context(), c.Param("id"), req, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, decision))
}

// GetFinalDecision returns the RFQ's final decision
// @Summary      Get final decision
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {object}  response.Response{data=model.FinalDecision}
// @Failure      404  {object}  response.Response
// @Router       /api/rfqs/{id}/final-decision [get]
func (h *RFQHandler) GetFinalDecision(c *gin.Context) {
	decision, err := h.rfqService.GetFinalDecision(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, decision))
}

// ListQuotations returns the quotations entered against an RFQ
// @Summary      List RFQ quotations
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {object}  response.Response
// @Router       /api/rfqs/{id}/quotations [get]
func (h *RFQHandler) ListQuotations(c *gin.Context) {
	quotations, err := h.quotationService.ListByRFQ(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quotations))
}
