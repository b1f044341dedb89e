package handler

import (
	"net/http"

	"delipos/internal/apierror"
	"delipos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Daily godoc
// @Summary Daily sales summary for a store
// @Tags reports
// @Produce json
// @Param store_id query string true "Store ID"
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} dto.DailySummaryResponse
// @Router /v1/reports/daily [get]
func (h *ReportsHandler) Daily(c *gin.Context) {
	storeID := c.Query("store_id")
	if storeID == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Query parameter store_id is required"))
		return
	}
	resp, err := h.svc.DailySummary(c.Request.Context(), storeID, c.Query("date"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
