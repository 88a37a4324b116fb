package utils

import (
	"document-archive/internal/errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// GetPaginationParams reads page and size, falling back to 1 and 10 for
// missing or out-of-range values.
func GetPaginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))

	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return page, size
}

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint64, error) {
	return ParseIDValue(c.Param(name), name)
}

// ParseIDValue parses a positive id that fits a signed 64-bit column.
func ParseIDValue(raw, name string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 63)
	if err != nil || id == 0 {
		return 0, errors.BadRequest("Invalid "+name, err)
	}
	return id, nil
}

// QueryBool treats "true", "1" and "yes" as true.
func QueryBool(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "true", "1", "yes":
		return true
	}
	return false
}
