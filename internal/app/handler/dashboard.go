package handler

import (
	"net/http"
	"strconv"

	"clientadmin/internal/app/dto"
	"clientadmin/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetDashboard
// @Summary Dashboard
// @Description Active counts, product names, revenue of active plans and the latest licenses
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} state.Dashboard
// @Router /api/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Dashboard())
}

// GetNotifications hands the pending toasts to the UI and clears them
// @Summary Pending notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.NotificationsResponse
// @Router /api/notifications [get]
func (h *Handler) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NotificationsResponse{Notifications: h.Feed.Drain()})
}

// GetAudit
// @Summary Notification audit trail
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param entity query string false "Entity name, e.g. license"
// @Param level query string false "success or error"
// @Param limit query int false "Maximum entries, default 50"
// @Success 200 {object} dto.AuditResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/audit [get]
func (h *Handler) GetAudit(c *gin.Context) {
	if h.Audit == nil {
		h.errorResponse(c, http.StatusNotFound, "audit log is not configured")
		return
	}

	filter := repository.AuditFilter{
		Entity: c.Query("entity"),
		Level:  c.Query("level"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.errorResponse(c, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	entries, err := h.Audit.Recent(c.Request.Context(), filter)
	if err != nil {
		logrus.Error("Error reading audit log: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "failed to read audit log")
		return
	}
	c.JSON(http.StatusOK, dto.AuditResponse{Entries: entries})
}
