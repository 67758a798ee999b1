package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/repository"
	"github.com/windoze95/cookiify-api/internal/service"
)

// RecipeHandler is the handler for recipe-related requests.
type RecipeHandler struct {
	Service *service.RecipeService
}

// NewRecipeHandler is the constructor function for initializing a new RecipeHandler.
func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{Service: recipeService}
}

// ListRecipes returns one page of stored recipes matching the query filters.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := repository.RecipeFilter{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		Cuisine:    c.Query("cuisine"),
		Difficulty: models.Difficulty(c.Query("difficulty")),
		Sort:       repository.RecipeSort(c.Query("sort")),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", repository.DefaultPageSize),
	}
	if v, err := strconv.ParseBool(c.Query("isVeg")); err == nil {
		filter.IsVeg = &v
	}
	if createdBy := c.Query("createdBy"); createdBy != "" {
		id, err := parseUintParam(createdBy)
		if err != nil {
			respondFail(c, http.StatusBadRequest, codeInvalidRequest, "Invalid user ID")
			return
		}
		filter.CreatedByID = &id
	}

	page, err := h.Service.ListRecipes(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// GetFeaturedRecipes returns the highest rated recipes.
func (h *RecipeHandler) GetFeaturedRecipes(c *gin.Context) {
	recipes, err := h.Service.GetFeaturedRecipes()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, recipes)
}

// GetCategories returns the categories in use.
func (h *RecipeHandler) GetCategories(c *gin.Context) {
	categories, err := h.Service.GetCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, categories)
}

// GetCuisines returns the cuisines in use.
func (h *RecipeHandler) GetCuisines(c *gin.Context) {
	cuisines, err := h.Service.GetCuisines()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cuisines)
}

// GetRecipe returns a recipe by ID.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	recipe, err := h.Service.GetRecipeByID(recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, recipe)
}

// CreateRecipe stores a recipe submitted by the authenticated user.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input service.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, "Invalid recipe payload")
		return
	}

	recipe, err := h.Service.CreateRecipe(user, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, recipe)
}

// UpdateRecipe replaces the editable fields of a recipe.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	var input service.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, "Invalid recipe payload")
		return
	}

	recipe, err := h.Service.UpdateRecipe(user, recipeID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, recipe)
}

// DeleteRecipe deletes a recipe by its ID along with its reviews.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	if err := h.Service.DeleteRecipe(user, recipeID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Recipe deleted successfully")
}

// ToggleFavorite adds or removes a recipe from the user's favorites.
func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id", "recipe")
	if !ok {
		return
	}

	favorite, err := h.Service.ToggleFavorite(user, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, favorite)
}

// GetFavorites lists the authenticated user's favorite recipes.
func (h *RecipeHandler) GetFavorites(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	recipes, err := h.Service.GetFavorites(user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, recipes)
}
