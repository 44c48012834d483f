package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		body   string
	}{
		{fmt.Errorf("name is required: %w", domain.ErrInvalidInput), http.StatusBadRequest, `{"error":"name is required"}`},
		{fmt.Errorf("%w: medicine name is required", domain.ErrInvalidInput), http.StatusBadRequest, `{"error":"medicine name is required"}`},
		{domain.ErrUnauthorized, http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{fmt.Errorf("order o1: %w", domain.ErrForbidden), http.StatusForbidden, `{"error":"order o1"}`},
		{domain.ErrNotFound, http.StatusNotFound, `{"error":"not found"}`},
		{fmt.Errorf("prescription rx1 is already approved: %w", domain.ErrConflict), http.StatusConflict, `{"error":"prescription rx1 is already approved"}`},
		{errors.New("dial tcp 10.0.0.7:27017: refused"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2027-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, time.March, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("2027-03-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, d.UTC().Hour())

	_, err = parseDate("01/03/2027")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
