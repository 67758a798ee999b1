package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/util"
)

// parseUintParam parses a string into a uint.
func parseUintParam(param string) (uint, error) {
	parsed, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed > uint64(^uint(0)) {
		return 0, fmt.Errorf("value out of range for uint: %d", parsed)
	}
	return uint(parsed), nil
}

// pathID parses the named path parameter as a positive ID, responding with
// 400 and returning false when it is not one.
func pathID(c *gin.Context, name, label string) (uint, bool) {
	id, err := parseUintParam(c.Param(name))
	if err != nil || id == 0 {
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user, responding with 401 and
// returning false when there is none.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, err := util.GetUserFromContext(c)
	if err != nil || user == nil {
		respondFail(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return nil, false
	}
	return user, true
}

// queryInt reads an integer query parameter, falling back to def when it is
// absent or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil {
		return v
	}
	return def
}

func boolPtr(b bool) *bool {
	return &b
}
