package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/service"
)

// ReviewHandler is the handler for review-related requests.
type ReviewHandler struct {
	Service *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: reviewService}
}

// ListRecipeReviews returns the reviews of a recipe, newest first.
func (h *ReviewHandler) ListRecipeReviews(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	reviews, err := h.Service.ListByRecipe(recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, reviews)
}

// CreateReview rates a recipe on behalf of the authenticated user.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input service.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, "Invalid review payload")
		return
	}

	result, err := h.Service.CreateReview(user, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

// UpdateReview changes the rating or comment of the user's own review.
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review_id", "review")
	if !ok {
		return
	}

	var input service.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, "Invalid review payload")
		return
	}

	result, err := h.Service.UpdateReview(user, reviewID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// DeleteReview removes a review and its rating from the recipe.
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review_id", "review")
	if !ok {
		return
	}

	result, err := h.Service.DeleteReview(user, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}
