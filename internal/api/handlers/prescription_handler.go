package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PrescriptionHandler struct {
	service   *service.PrescriptionService
	maxUpload int64
}

func NewPrescriptionHandler(service *service.PrescriptionService, maxUpload int64) *PrescriptionHandler {
	return &PrescriptionHandler{service: service, maxUpload: maxUpload}
}

type quoteItemRequest struct {
	MedicineID string  `json:"medicineId"`
	Name       string  `json:"name" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	Price      float64 `json:"price" binding:"required,gt=0"`
}

type quoteRequest struct {
	Items []quoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Upload takes a multipart form with an "image" file and the delivery details
func (h *PrescriptionHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prescription image is required"})
		return
	}
	if h.maxUpload > 0 && fileHeader.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prescription image is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read prescription image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("prescription: failed to read upload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read prescription image"})
		return
	}

	contentType := strings.TrimSpace(fileHeader.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	prescription, err := h.service.Upload(c.Request.Context(), accountID(c), service.UploadPrescriptionInput{
		PatientName:     c.PostForm("patientName"),
		Phone:           c.PostForm("phone"),
		DeliveryAddress: c.PostForm("deliveryAddress"),
		Notes:           c.PostForm("notes"),
		Image:           data,
		ContentType:     contentType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prescription)
}

func (h *PrescriptionHandler) ListMine(c *gin.Context) {
	list, err := h.service.ListForCustomer(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *PrescriptionHandler) ListPending(c *gin.Context) {
	list, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	prescription, err := h.service.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prescription)
}

func (h *PrescriptionHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if !bindJSON(c, &req) {
		return
	}
	items := make([]service.QuoteItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.QuoteItem{
			MedicineID: item.MedicineID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
		})
	}

	prescription, err := h.service.Quote(c.Request.Context(), accountID(c), c.Param("id"), items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prescription)
}

// Approve answers 409 when another pharmacist approved first
func (h *PrescriptionHandler) Approve(c *gin.Context) {
	order, err := h.service.Approve(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *PrescriptionHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if !bindJSON(c, &req) {
		return
	}
	prescription, err := h.service.Reject(c.Request.Context(), accountID(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prescription)
}
