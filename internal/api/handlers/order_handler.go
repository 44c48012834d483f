package handlers

import (
	"net/http"

	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service *service.OrderService
}

func NewOrderHandler(service *service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type checkoutItemRequest struct {
	MedicineID string `json:"medicineId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
}

type checkoutRequest struct {
	PharmacistID    string                `json:"pharmacistId" binding:"required"`
	Items           []checkoutItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   string                `json:"paymentMethod"`
	DeliveryAddress string                `json:"deliveryAddress"`
	Phone           string                `json:"phone"`
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CheckoutItem{MedicineID: item.MedicineID, Quantity: item.Quantity})
	}

	order, err := h.service.Checkout(c.Request.Context(), accountID(c), service.CheckoutInput{
		PharmacistID:    req.PharmacistID,
		Items:           items,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.service.ListForCustomer(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

func (h *OrderHandler) ListPharmacy(c *gin.Context) {
	orders, err := h.service.ListForPharmacist(c.Request.Context(), accountID(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req orderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.service.UpdateStatus(c.Request.Context(), actorFrom(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
