package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/service"
	"procurement/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	audits := router.Group("/api/audit-logs", authMW, middleware.RequireRank(model.RoleAdmin))
	{
		audits.GET("", h.ListAuditLogs)
	}
}

// ListAuditLogs returns the audit trail, optionally filtered by action
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        action  query     string  false  "Action filter"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Limit"
// @Success      200     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)

	entries, total, err := h.auditService.ListAuditLogs(c.Request.Context(), c.Query("action"), p.Page, p.Limit, middleware.CurrentAccount(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   entries,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	})
}
