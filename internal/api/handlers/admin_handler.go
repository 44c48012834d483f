package handlers

import (
	"net/http"

	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	auth *service.AuthService
}

func NewAdminHandler(auth *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: auth}
}

type verifyPharmacistRequest struct {
	Verified *bool `json:"verified"`
}

// VerifyPharmacist sets the verification flag; an empty body verifies
func (h *AdminHandler) VerifyPharmacist(c *gin.Context) {
	var req verifyPharmacistRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	verified := true
	if req.Verified != nil {
		verified = *req.Verified
	}

	account, err := h.auth.VerifyPharmacist(c.Request.Context(), c.Param("id"), verified)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
