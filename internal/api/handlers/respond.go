package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/api/middleware"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors to status codes. Unexpected errors are
// logged and reported without detail.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": errorMessage(err)})
}

// errorMessage strips the wrapped sentinel suffix ("...: not found")
func errorMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrInvalidInput, domain.ErrUnauthorized, domain.ErrForbidden, domain.ErrNotFound, domain.ErrConflict} {
		if msg == sentinel.Error() {
			return msg
		}
		if trimmed := strings.TrimSuffix(msg, ": "+sentinel.Error()); trimmed != msg {
			return trimmed
		}
		if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != msg {
			return trimmed
		}
	}
	return msg
}

// bindJSON decodes and validates the body, writing a 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		body := gin.H{"error": "invalid request body"}
		if details := middleware.ValidationDetails(err); details != nil {
			body["error"] = "request validation failed"
			body["details"] = details
		}
		c.JSON(http.StatusBadRequest, body)
		return false
	}
	return true
}

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:   c.GetString(middleware.AccountIDKey),
		Role: domain.Role(c.GetString(middleware.RoleKey)),
	}
}

func accountID(c *gin.Context) string {
	return c.GetString(middleware.AccountIDKey)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query(name))); err == nil {
		return v
	}
	return fallback
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate accepts RFC 3339 timestamps and plain dates
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.ErrInvalidInput
}
