package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseIDParam parses a positive integer path parameter into a uint.
func ParseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s parameter: %q", name, raw)
	}
	return uint(id), nil
}

// QueryInt parses an optional integer query parameter, returning defaultVal
// when absent or malformed.
func QueryInt(c *gin.Context, name string, defaultVal int) int {
	if raw := c.Query(name); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			return val
		}
	}
	return defaultVal
}

// QueryUint parses an optional unsigned integer query parameter, returning 0
// when absent or malformed.
func QueryUint(c *gin.Context, name string) uint {
	if raw := c.Query(name); raw != "" {
		if val, err := strconv.ParseUint(raw, 10, 32); err == nil {
			return uint(val)
		}
	}
	return 0
}
