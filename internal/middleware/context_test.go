package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/service"
	"github.com/windoze95/cookiify-api/internal/testutil"
	"github.com/windoze95/cookiify-api/internal/util"
)

func setupUserRouter(repo *testutil.MockUserRepo, seen *string) *gin.Engine {
	r := gin.New()
	r.Use(VerifyTokenMiddleware(testConfig()))
	r.Use(AttachUserToContext(service.NewUserService(testConfig(), repo)))
	r.GET("/test", func(c *gin.Context) {
		if user, err := util.GetUserFromContext(c); err == nil {
			*seen = user.Username
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestAttachUserToContext_LoadsUser(t *testing.T) {
	repo := testutil.NewMockUserRepo(nil)
	repo.Add(testutil.TestUser())
	var seen string

	getWithToken(setupUserRouter(repo, &seen), makeTestToken(1, "access", time.Now().Add(time.Minute), testSecret))

	if seen != "testuser" {
		t.Errorf("user in context = %q, want testuser", seen)
	}
}

func TestAttachUserToContext_UnknownUser(t *testing.T) {
	repo := testutil.NewMockUserRepo(nil)
	var seen string

	w := getWithToken(setupUserRouter(repo, &seen), makeTestToken(7, "access", time.Now().Add(time.Minute), testSecret))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if seen != "" {
		t.Errorf("user in context = %q, want none", seen)
	}
}
