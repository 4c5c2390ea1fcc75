package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensa/dlexam-backend/internal/service"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c, rec
}

func TestFailDomainInsufficientQuestionsCarriesCounts(t *testing.T) {
	c, rec := newTestContext(t)

	failDomain(c, fmt.Errorf("select questions: %w",
		&service.InsufficientQuestionsError{Required: 20, Available: 5}))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INSUFFICIENT_QUESTIONS", body.Error.Code)
	assert.Equal(t, "20", body.Error.Fields["required"])
	assert.Equal(t, "5", body.Error.Fields["available"])
}

func TestFailDomainUnknownErrorIsInternal(t *testing.T) {
	c, rec := newTestContext(t)

	failDomain(c, fmt.Errorf("get config: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
}
