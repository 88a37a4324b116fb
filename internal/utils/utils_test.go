package utils

import (
	"document-archive/internal/errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	page, size := GetPaginationParams(newContext("/?page=3&size=25"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, size)

	page, size = GetPaginationParams(newContext("/?page=0&size=500"))
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = GetPaginationParams(newContext("/"))
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestParseID(t *testing.T) {
	c := newContext("/")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, err := ParseID(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.Params = gin.Params{{Key: "id", Value: "9223372036854775807"}}
	id, err = ParseID(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1<<63-1), id)

	for _, bad := range []string{"abc", "0", "-1", "9223372036854775808", "18446744073709551615"} {
		c.Params = gin.Params{{Key: "id", Value: bad}}
		_, err = ParseID(c, "id")
		assert.True(t, errors.HasCode(err, errors.CodeValidation), bad)
	}
}

func TestQueryBool(t *testing.T) {
	assert.True(t, QueryBool(newContext("/?x=true"), "x"))
	assert.True(t, QueryBool(newContext("/?x=1"), "x"))
	assert.False(t, QueryBool(newContext("/?x=false"), "x"))
	assert.False(t, QueryBool(newContext("/"), "x"))
}
