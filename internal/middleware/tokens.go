package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/util"
)

// VerifyTokenMiddleware verifies the JWT access token provided in the
// Authorization header and stores its user ID in the context.
func VerifyTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.EnvVars.JwtSecretKey), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		// Refresh tokens are only accepted by the refresh endpoint
		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != "access" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid token type")
			return
		}

		// JSON numbers decode as float64
		idFloat, ok := claims["user_id"].(float64)
		if !ok || idFloat <= 0 {
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid user_id in token")
			return
		}
		c.Set(util.UserIDKey, uint(idFloat))
		c.Next()
	}
}
