package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Name          string `json:"name" binding:"required,max=120"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone" binding:"omitempty,max=20"`
	Password      string `json:"password" binding:"omitempty,min=8"`
	Role          string `json:"role"`
	PharmacyName  string `json:"pharmacyName"`
	Address       string `json:"address"`
	PostalCode    string `json:"postalCode"`
	LicenseNumber string `json:"licenseNumber"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required"`
}

type identifierRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

type verifyOTPRequest struct {
	identifierRequest
	Code string `json:"code" binding:"required,len=6"`
}

type resetPasswordRequest struct {
	identifierRequest
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type profileRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=120"`
	PharmacyName  *string `json:"pharmacyName"`
	Address       *string `json:"address"`
	PostalCode    *string `json:"postalCode"`
	LicenseNumber *string `json:"licenseNumber"`
	IsAvailable   *bool   `json:"isAvailable"`
}

// identifier prefers the explicit field, then email, then phone
func (r identifierRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Phone} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Password:      req.Password,
		Role:          domain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		PharmacyName:  req.PharmacyName,
		Address:       req.Address,
		PostalCode:    req.PostalCode,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	id := identifierRequest{Identifier: req.Identifier, Email: req.Email, Phone: req.Phone}.identifier()
	session, err := h.service.Login(c.Request.Context(), id, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// RequestOTP always answers 202 for unknown accounts too
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req identifierRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.RequestOTP(c.Request.Context(), req.identifier()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "if the account exists a code has been sent"})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.service.VerifyOTP(c.Request.Context(), req.identifier(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req.identifier(), req.Code, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.service.Me(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	account, err := h.service.UpdateProfile(c.Request.Context(), accountID(c), service.ProfileInput{
		Name:          req.Name,
		PharmacyName:  req.PharmacyName,
		Address:       req.Address,
		PostalCode:    req.PostalCode,
		LicenseNumber: req.LicenseNumber,
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
