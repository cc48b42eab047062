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

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	approvals := router.Group("/api/approvals", authMW)
	{
		approvals.GET("", h.ListApprovals)
		approvals.GET("/:id", h.GetApproval)
		approvals.PUT("/:id/approve", h.Approve)
		approvals.PUT("/:id/reject", h.Reject)
	}
}

// ListApprovals returns the approval queue, optionally filtered
// @Summary      List approvals
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        kind       query     string  false  "Target kind (RFQ, QUOTATION, SUPPLIER)"
// @Param        target_id  query     string  false  "Target ID filter"
// @Param        status     query     string  false  "Status filter"
// @Param        page       query     int     false  "Page"
// @Param        limit      query     int     false  "Limit"
// @Success      200        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /api/approvals [get]
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.ApprovalFilter{
		Kind:     c.Query("kind"),
		TargetID: c.Query("target_id"),
		Status:   c.Query("status"),
		Page:     p.Page,
		Limit:    p.Limit,
	}

	approvals, total, err := h.approvalService.ListApprovals(c.Request.Context(), filter, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   approvals,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	})
}

// GetApproval returns one approval record
// @Summary      Get approval
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Approval ID"
// @Success      200  {object}  response.Response{data=model.Approval}
// @Failure      404  {object}  response.Response
// @Router       /api/approvals/{id} [get]
func (h *ApprovalHandler) GetApproval(c *gin.Context) {
	approval, err := h.approvalService.GetApproval(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

// Approve approves a pending approval and advances its target
// @Summary      Approve
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true   "Approval ID"
// @Param        payload  body      service.DecideRequest  false  "Optional comments"
// @Success      200      {object}  response.Response{data=model.Approval}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/approvals/{id}/approve [put]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	var req service.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Allow empty body — comments are optional
		req.Comments = ""
	}

	approval, err := h.approvalService.Approve(c.Request.Context(), c.Param("id"), req.Comments, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

// Reject rejects a pending approval, terminating the target's workflow
// @Summary      Reject
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true   "Approval ID"
// @Param        payload  body      service.DecideRequest  false  "Optional comments"
// @Success      200      {object}  response.Response{data=model.Approval}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/approvals/{id}/reject [put]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	var req service.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Comments = ""
	}

	approval, err := h.approvalService.Reject(c.Request.Context(), c.Param("id"), req.Comments, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}
