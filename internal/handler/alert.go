package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/model"
	"fleetwatch/internal/report"
	"fleetwatch/internal/store"
)

// AlertHandler serves alert queries, manual closing and report export.
type AlertHandler struct {
	alerts  *store.AlertStore
	cache   *store.AlertCache
	manager *alert.Manager
}

// NewAlertHandler creates an alert handler.
func NewAlertHandler(alerts *store.AlertStore, cache *store.AlertCache, manager *alert.Manager) *AlertHandler {
	return &AlertHandler{alerts: alerts, cache: cache, manager: manager}
}

// RegisterRoutes mounts the alert routes.
func (h *AlertHandler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	{
		alerts.GET("", h.List)
		alerts.GET("/recent", h.Recent)
		alerts.GET("/report", h.Report)
		alerts.POST("/:id/close", h.Close)
	}
}

// List handles GET /alerts.
func (h *AlertHandler) List(c *gin.Context) {
	var query model.AlertListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}

	resp, err := h.alerts.List(c.Request.Context(), &query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recent handles GET /alerts/recent from the Redis cache.
func (h *AlertHandler) Recent(c *gin.Context) {
	n, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if n <= 0 || n > 100 {
		n = 20
	}

	alerts, err := h.cache.Recent(c.Request.Context(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": alerts})
}

// Close handles POST /alerts/:id/close.
func (h *AlertHandler) Close(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	var req model.CloseAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.manager.ManualClose(c.Request.Context(), uint(id), req.Status, req.ShipmentID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, alert.ErrInvalidStatus),
		errors.Is(err, alert.ErrInvalidTransition),
		errors.Is(err, alert.ErrNotClosable),
		errors.Is(err, alert.ErrShipmentMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Report handles GET /alerts/report, streaming an xlsx export of the
// filtered alerts.
func (h *AlertHandler) Report(c *gin.Context) {
	var query model.AlertListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query.Page = 1
	if query.PageSize <= 0 || query.PageSize > 10000 {
		query.PageSize = 10000
	}

	resp, err := h.alerts.List(c.Request.Context(), &query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	f, err := report.BuildAlertReport(resp.List)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="alerts.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
