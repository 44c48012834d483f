package handlers

import (
	"net/http"

	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetPharmacistReport returns the dashboard of the signed-in pharmacist
func (h *AnalyticsHandler) GetPharmacistReport(c *gin.Context) {
	report, err := h.service.PharmacistReport(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
