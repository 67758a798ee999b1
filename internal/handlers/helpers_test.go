package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/testutil"
)

func TestParseUintParam_Valid(t *testing.T) {
	got, err := parseUintParam("123")
	if err != nil {
		t.Fatalf("parseUintParam('123') error: %v", err)
	}
	if got != 123 {
		t.Errorf("parseUintParam('123') = %d, want 123", got)
	}
}

func TestParseUintParam_Zero(t *testing.T) {
	got, err := parseUintParam("0")
	if err != nil {
		t.Fatalf("parseUintParam('0') error: %v", err)
	}
	if got != 0 {
		t.Errorf("parseUintParam('0') = %d, want 0", got)
	}
}

func testContext(params gin.Params, query string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	c.Params = params
	return c, w
}

func TestPathID_Valid(t *testing.T) {
	c, w := testContext(gin.Params{{Key: "recipe_id", Value: "42"}}, "")
	id, ok := pathID(c, "recipe_id", "recipe")
	if !ok || id != 42 {
		t.Errorf("pathID() = %d, %v, want 42, true", id, ok)
	}
	if c.IsAborted() || w.Body.Len() != 0 {
		t.Errorf("valid id should not write a response, got %q", w.Body.String())
	}
}

func TestPathID_RejectsZeroAndGarbage(t *testing.T) {
	for _, raw := range []string{"0", "abc", "-3", ""} {
		c, w := testContext(gin.Params{{Key: "review_id", Value: raw}}, "")
		if id, ok := pathID(c, "review_id", "review"); ok || id != 0 {
			t.Errorf("pathID(%q) = %d, %v, want 0, false", raw, id, ok)
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("pathID(%q) status = %d, want 400", raw, w.Code)
		}
		env := decodeEnvelope(t, w)
		if env.Success || env.Message != "Invalid review ID" || env.Error != codeInvalidRequest {
			t.Errorf("pathID(%q) envelope = %+v", raw, env)
		}
	}
}

func TestCurrentUser(t *testing.T) {
	c, w := testContext(nil, "")
	if _, ok := currentUser(c); ok {
		t.Error("currentUser() without a user should fail")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	c, _ = testContext(nil, "")
	c.Set("user", testutil.TestUser())
	if user, ok := currentUser(c); !ok || user.Username != testutil.TestUser().Username {
		t.Errorf("currentUser() = %v, %v", user, ok)
	}
}

func TestQueryInt(t *testing.T) {
	c, _ := testContext(nil, "page=3&limit=lots")
	if got := queryInt(c, "page", 1); got != 3 {
		t.Errorf("queryInt(page) = %d, want 3", got)
	}
	if got := queryInt(c, "limit", 12); got != 12 {
		t.Errorf("queryInt(limit) = %d, want default 12", got)
	}
	if got := queryInt(c, "missing", 7); got != 7 {
		t.Errorf("queryInt(missing) = %d, want default 7", got)
	}
}

func TestParseUintParam_Negative(t *testing.T) {
	_, err := parseUintParam("-1")
	if err == nil {
		t.Error("parseUintParam('-1') should return error")
	}
}

func TestParseUintParam_NonNumeric(t *testing.T) {
	_, err := parseUintParam("abc")
	if err == nil {
		t.Error("parseUintParam('abc') should return error")
	}
}

func TestParseUintParam_LargeNumber(t *testing.T) {
	got, err := parseUintParam("999999999")
	if err != nil {
		t.Fatalf("parseUintParam('999999999') error: %v", err)
	}
	if got != 999999999 {
		t.Errorf("parseUintParam('999999999') = %d, want 999999999", got)
	}
}

func TestParseUintParam_Empty(t *testing.T) {
	_, err := parseUintParam("")
	if err == nil {
		t.Error("parseUintParam('') should return error")
	}
}

func TestParseUintParam_Float(t *testing.T) {
	_, err := parseUintParam("3.14")
	if err == nil {
		t.Error("parseUintParam('3.14') should return error")
	}
}
