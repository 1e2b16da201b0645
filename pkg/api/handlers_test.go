package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestIntQueryReturnsDefaultWhenAbsent(t *testing.T) {
	c := newTestContext("")
	assert.Equal(t, 50, intQuery(c, "limit", 50))
}

func TestIntQueryParsesValidValue(t *testing.T) {
	c := newTestContext("limit=10")
	assert.Equal(t, 10, intQuery(c, "limit", 50))
}

func TestIntQueryRejectsNegativeAndNonNumeric(t *testing.T) {
	assert.Equal(t, 50, intQuery(newTestContext("limit=-5"), "limit", 50))
	assert.Equal(t, 50, intQuery(newTestContext("limit=abc"), "limit", 50))
}
