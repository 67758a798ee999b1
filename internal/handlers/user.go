package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/service"
	"go.uber.org/zap"
)

// Token lifetimes.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// UserHandler is the handler for user-related requests.
type UserHandler struct {
	Service *service.UserService
}

// NewUserHandler is the constructor function for initializing a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{Service: userService}
}

// AuthResponse is returned by the signup, login and refresh endpoints.
type AuthResponse struct {
	AccessToken  string                `json:"access_token"`
	RefreshToken string                `json:"refresh_token"`
	User         *service.UserResponse `json:"user,omitempty"`
}

// CreateUser registers a new user and logs them in.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var newUser struct {
		Username string `json:"username" binding:"required"`
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	// Returns error if a required field is not included
	if err := c.ShouldBindJSON(&newUser); err != nil {
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, "Username, email, and password fields are required")
		return
	}

	user, err := h.Service.CreateUser(newUser.Username, newUser.Name, newUser.Email, newUser.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondWithTokens(c, http.StatusCreated, user, "signup")
}

// LoginUser logs a user in.
func (h *UserHandler) LoginUser(c *gin.Context) {
	var userCredentials struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&userCredentials); err != nil {
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, "All fields are required")
		return
	}

	user, err := h.Service.LoginUser(userCredentials.Username, userCredentials.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondWithTokens(c, http.StatusOK, user, "login")
}

func (h *UserHandler) respondWithTokens(c *gin.Context, status int, user *models.User, event string) {
	secret := h.Service.Cfg.EnvVars.JwtSecretKey
	accessToken, err := generateAccessToken(user.ID, secret)
	if err != nil {
		logger.FromGin(c).Error("failed to generate access token on "+event, zap.Uint("user_id", user.ID), zap.Error(err))
		respondFail(c, http.StatusInternalServerError, codeInternal, "Failed to generate access token")
		return
	}
	refreshToken, err := generateRefreshToken(user.ID, secret)
	if err != nil {
		logger.FromGin(c).Error("failed to generate refresh token on "+event, zap.Uint("user_id", user.ID), zap.Error(err))
		respondFail(c, http.StatusInternalServerError, codeInternal, "Failed to generate refresh token")
		return
	}

	respondOK(c, status, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         service.ToUserResponse(user),
	})
}

// generateAccessToken generates a short-lived JWT access token for a user.
func generateAccessToken(userID uint, secretKey string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(AccessTokenTTL).Unix(),
		"iat":     time.Now().Unix(),
		"type":    "access",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("generateAccessToken: %v", err)
	}
	return tokenString, nil
}

// generateRefreshToken generates a long-lived JWT refresh token for a user.
func generateRefreshToken(userID uint, secretKey string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(RefreshTokenTTL).Unix(),
		"iat":     time.Now().Unix(),
		"type":    "refresh",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("generateRefreshToken: %v", err)
	}
	return tokenString, nil
}

// RefreshToken validates a refresh token and issues a new token pair.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var request struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, "refresh_token is required")
		return
	}

	secret := h.Service.Cfg.EnvVars.JwtSecretKey
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(request.RefreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		respondFail(c, http.StatusUnauthorized, codeUnauthorized, "Invalid or expired refresh token")
		return
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		respondFail(c, http.StatusUnauthorized, codeUnauthorized, "Invalid token type")
		return
	}

	idFloat, ok := claims["user_id"].(float64)
	if !ok {
		respondFail(c, http.StatusUnauthorized, codeUnauthorized, "Invalid user_id in token")
		return
	}
	userID := uint(idFloat)

	accessToken, err := generateAccessToken(userID, secret)
	if err != nil {
		logger.FromGin(c).Error("failed to generate access token on refresh", zap.Uint("user_id", userID), zap.Error(err))
		respondFail(c, http.StatusInternalServerError, codeInternal, "Failed to generate access token")
		return
	}
	newRefreshToken, err := generateRefreshToken(userID, secret)
	if err != nil {
		logger.FromGin(c).Error("failed to generate refresh token on refresh", zap.Uint("user_id", userID), zap.Error(err))
		respondFail(c, http.StatusInternalServerError, codeInternal, "Failed to generate refresh token")
		return
	}

	respondOK(c, http.StatusOK, AuthResponse{AccessToken: accessToken, RefreshToken: newRefreshToken})
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, service.ToUserResponse(user))
}

// UpdateMe updates the authenticated user's display name.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, "Invalid request")
		return
	}

	if err := h.Service.UpdateName(user, req.Name); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, service.ToUserResponse(user))
}
