package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/service"
	"github.com/windoze95/cookiify-api/internal/util"
	"go.uber.org/zap"
)

// AttachUserToContext loads the user named by the verified token and stores
// it in the context. A token for a deleted user leaves the context without a
// user, which handlers report as unauthenticated.
func AttachUserToContext(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := util.GetUserIDFromContext(c)
		if err != nil {
			c.Next()
			return
		}

		user, err := userService.GetUserByID(userID)
		if err != nil {
			logger.FromGin(c).Debug("token user not loaded", zap.Uint("user_id", userID), zap.Error(err))
		} else {
			c.Set(util.UserKey, user)
		}
		c.Next()
	}
}
