package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

type medicineRequest struct {
	Name         string  `json:"name" binding:"required,max=200"`
	BatchNumber  string  `json:"batchNumber" binding:"required,max=64"`
	Category     string  `json:"category" binding:"max=100"`
	Manufacturer string  `json:"manufacturer" binding:"max=200"`
	Description  string  `json:"description"`
	Stock        *int    `json:"stock" binding:"required,gte=0"`
	ReorderLevel *int    `json:"reorderLevel" binding:"omitempty,gte=0"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	ExpiryDate   string  `json:"expiryDate" binding:"required"`
}

type medicineUpdateRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=200"`
	BatchNumber  *string  `json:"batchNumber" binding:"omitempty,max=64"`
	Category     *string  `json:"category"`
	Manufacturer *string  `json:"manufacturer"`
	Description  *string  `json:"description"`
	Stock        *int     `json:"stock" binding:"omitempty,gte=0"`
	ReorderLevel *int     `json:"reorderLevel" binding:"omitempty,gte=0"`
	Price        *float64 `json:"price" binding:"omitempty,gt=0"`
	ExpiryDate   *string  `json:"expiryDate"`
}

func (h *InventoryHandler) List(c *gin.Context) {
	medicines, err := h.service.List(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(medicines))
}

func (h *InventoryHandler) Get(c *gin.Context) {
	medicine, err := h.service.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicine)
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var req medicineRequest
	if !bindJSON(c, &req) {
		return
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expiryDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
		return
	}

	medicine, err := h.service.Create(c.Request.Context(), accountID(c), service.MedicineInput{
		Name:         req.Name,
		BatchNumber:  req.BatchNumber,
		Category:     req.Category,
		Manufacturer: req.Manufacturer,
		Description:  req.Description,
		Stock:        *req.Stock,
		ReorderLevel: req.ReorderLevel,
		Price:        req.Price,
		ExpiryDate:   expiry,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, medicine)
}

func (h *InventoryHandler) Update(c *gin.Context) {
	var req medicineUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	update := service.MedicineUpdate{
		Name:         req.Name,
		BatchNumber:  req.BatchNumber,
		Category:     req.Category,
		Manufacturer: req.Manufacturer,
		Description:  req.Description,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
		Price:        req.Price,
	}
	if req.ExpiryDate != nil {
		expiry, err := parseDate(*req.ExpiryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expiryDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
			return
		}
		update.ExpiryDate = &expiry
	}

	medicine, err := h.service.Update(c.Request.Context(), accountID(c), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicine)
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), accountID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.service.Alerts(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

func (h *InventoryHandler) ExpiringSoon(c *gin.Context) {
	items, err := h.service.ExpiringSoon(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// Search looks up ?name= among pharmacies in the caller's postal area
func (h *InventoryHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("name"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "medicine name is required"})
		return
	}
	results, err := h.service.Search(c.Request.Context(), accountID(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(results))
}

func (h *InventoryHandler) AlertHistory(c *gin.Context) {
	days := queryInt(c, "days", 30)
	history, err := h.service.AlertHistory(c.Request.Context(), accountID(c), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "snapshots": nonNil(history)})
}

// nonNil keeps empty lists serialised as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
