package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/repository"
)

// FeaturedRecipeCount is how many recipes the featured listing returns.
const FeaturedRecipeCount = 6

// RecipeService is the business logic layer for recipe-related operations.
type RecipeService struct {
	Cfg      *config.Config
	Repo     repository.RecipeRepo
	UserRepo repository.UserRepo
}

// RecipeResponse is the response object for recipe-related operations. It is
// used both for stored recipes and for transient upstream results, whose ID
// is the upstream id.
type RecipeResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Ingredients   models.Ingredients  `json:"ingredients"`
	Steps         []string            `json:"steps"`
	Category      string              `json:"category"`
	Cuisine       string              `json:"cuisine"`
	CookingTime   int                 `json:"cookingTime"`
	Difficulty    models.Difficulty   `json:"difficulty"`
	Image         string              `json:"image"`
	Source        models.RecipeSource `json:"source"`
	ExternalID    string              `json:"externalId,omitempty"`
	SourceURL     string              `json:"sourceUrl,omitempty"`
	Summary       string              `json:"summary,omitempty"`
	CreatedBy     *CreatorResponse    `json:"createdBy,omitempty"`
	Ratings       []RatingResponse    `json:"ratings"`
	AverageRating float64             `json:"averageRating"`
	Tags          []string            `json:"tags"`
	Servings      int                 `json:"servings"`
	IsVeg         bool                `json:"isVeg"`
	CreatedAt     string              `json:"createdAt,omitempty"`
	UpdatedAt     string              `json:"updatedAt,omitempty"`
}

// CreatorResponse is the public view of a recipe's author.
type CreatorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// RatingResponse is one entry of a recipe's ratings.
type RatingResponse struct {
	User   string `json:"user"`
	Rating int    `json:"rating"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// RecipeListResponse is a page of recipes.
type RecipeListResponse struct {
	Recipes    []RecipeResponse `json:"recipes"`
	Pagination Pagination       `json:"pagination"`
}

// FavoriteResponse reports the outcome of a favorite toggle.
type FavoriteResponse struct {
	IsFavorite bool     `json:"isFavorite"`
	Favorites  []string `json:"favorites"`
}

// RecipeInput is the user-editable part of a recipe.
type RecipeInput struct {
	Title       string             `json:"title"`
	Ingredients models.Ingredients `json:"ingredients"`
	Steps       []string           `json:"steps"`
	Category    string             `json:"category"`
	Cuisine     string             `json:"cuisine"`
	CookingTime int                `json:"cookingTime"`
	Difficulty  models.Difficulty  `json:"difficulty"`
	Image       string             `json:"image"`
	Summary     string             `json:"summary"`
	Servings    int                `json:"servings"`
	Tags        []string           `json:"tags"`
	IsVeg       *bool              `json:"isVeg"`
}

// NewRecipeService is the constructor function for initializing a new RecipeService
func NewRecipeService(cfg *config.Config, repo repository.RecipeRepo, userRepo repository.UserRepo) *RecipeService {
	return &RecipeService{
		Cfg:      cfg,
		Repo:     repo,
		UserRepo: userRepo,
	}
}

// ListRecipes returns one page of recipes matching filter.
func (s *RecipeService) ListRecipes(filter repository.RecipeFilter) (*RecipeListResponse, error) {
	filter.Normalize()
	recipes, total, err := s.Repo.ListRecipes(filter)
	if err != nil {
		return nil, err
	}
	return &RecipeListResponse{
		Recipes: ToRecipeResponses(recipes),
		Pagination: Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	}, nil
}

// GetFeaturedRecipes returns the highest rated recipes.
func (s *RecipeService) GetFeaturedRecipes() ([]RecipeResponse, error) {
	recipes, err := s.Repo.GetFeaturedRecipes(FeaturedRecipeCount)
	if err != nil {
		return nil, err
	}
	return ToRecipeResponses(recipes), nil
}

// GetRecipeByID fetches a recipe by its ID.
func (s *RecipeService) GetRecipeByID(recipeID uint) (*RecipeResponse, error) {
	recipe, err := s.Repo.GetRecipeByID(recipeID)
	if err != nil {
		return nil, fromRepoError(err)
	}
	return ToRecipeResponse(recipe), nil
}

// CreateRecipe stores a new user-submitted recipe owned by user.
func (s *RecipeService) CreateRecipe(user *models.User, input RecipeInput) (*RecipeResponse, error) {
	recipe := &models.Recipe{
		Source:      models.SourceUser,
		CreatedByID: &user.ID,
		Ratings:     models.Ratings{},
	}
	applyRecipeInput(recipe, input)
	recipe.ApplyDefaults()
	if err := recipe.Validate(); err != nil {
		return nil, fromValidationError(err)
	}

	if err := s.Repo.CreateRecipe(recipe); err != nil {
		return nil, err
	}
	recipe.CreatedBy = user
	return ToRecipeResponse(recipe), nil
}

// UpdateRecipe replaces the editable fields of a recipe. Only the owner or an
// admin may update it.
func (s *RecipeService) UpdateRecipe(user *models.User, recipeID uint, input RecipeInput) (*RecipeResponse, error) {
	recipe, err := s.Repo.GetRecipeByID(recipeID)
	if err != nil {
		return nil, fromRepoError(err)
	}
	if !canModify(user, recipe) {
		return nil, newError(ErrForbidden, "Not authorized to update this recipe")
	}

	applyRecipeInput(recipe, input)
	recipe.ApplyDefaults()
	if err := recipe.Validate(); err != nil {
		return nil, fromValidationError(err)
	}

	if err := s.Repo.UpdateRecipe(recipe); err != nil {
		return nil, fromRepoError(err)
	}
	return ToRecipeResponse(recipe), nil
}

// DeleteRecipe deletes a recipe and its reviews. Only the owner or an admin
// may delete it.
func (s *RecipeService) DeleteRecipe(user *models.User, recipeID uint) error {
	recipe, err := s.Repo.GetRecipeByID(recipeID)
	if err != nil {
		return fromRepoError(err)
	}
	if !canModify(user, recipe) {
		return newError(ErrForbidden, "Not authorized to delete this recipe")
	}
	return fromRepoError(s.Repo.DeleteRecipe(recipeID))
}

// GetCategories returns every category in use.
func (s *RecipeService) GetCategories() ([]string, error) {
	return s.Repo.GetDistinctCategories()
}

// GetCuisines returns every cuisine in use.
func (s *RecipeService) GetCuisines() ([]string, error) {
	return s.Repo.GetDistinctCuisines()
}

// ToggleFavorite adds or removes a recipe from the user's favorites.
func (s *RecipeService) ToggleFavorite(user *models.User, recipeID uint) (*FavoriteResponse, error) {
	if _, err := s.Repo.GetRecipeByID(recipeID); err != nil {
		return nil, fromRepoError(err)
	}
	isFavorite, err := s.UserRepo.ToggleFavorite(user.ID, recipeID)
	if err != nil {
		return nil, err
	}
	ids, err := s.UserRepo.GetFavoriteIDs(user.ID)
	if err != nil {
		return nil, err
	}
	favorites := make([]string, len(ids))
	for i, id := range ids {
		favorites[i] = formatID(id)
	}
	return &FavoriteResponse{IsFavorite: isFavorite, Favorites: favorites}, nil
}

// GetFavorites lists the user's favorite recipes.
func (s *RecipeService) GetFavorites(user *models.User) ([]RecipeResponse, error) {
	recipes, err := s.UserRepo.GetFavorites(user.ID)
	if err != nil {
		return nil, err
	}
	return ToRecipeResponses(recipes), nil
}

func canModify(user *models.User, recipe *models.Recipe) bool {
	return user.IsAdmin() || recipe.IsOwnedBy(user.ID)
}

func applyRecipeInput(recipe *models.Recipe, input RecipeInput) {
	recipe.Title = strings.TrimSpace(input.Title)
	recipe.Ingredients = trimIngredients(input.Ingredients)
	recipe.Steps = trimList(input.Steps)
	recipe.Category = strings.TrimSpace(input.Category)
	recipe.Cuisine = strings.TrimSpace(input.Cuisine)
	recipe.CookingTime = input.CookingTime
	recipe.Difficulty = input.Difficulty
	recipe.Image = strings.TrimSpace(input.Image)
	recipe.Summary = strings.TrimSpace(input.Summary)
	recipe.Servings = input.Servings
	recipe.Tags = trimList(input.Tags)
	recipe.IsVeg = true
	if input.IsVeg != nil {
		recipe.IsVeg = *input.IsVeg
	}
}

func trimIngredients(in models.Ingredients) models.Ingredients {
	out := make(models.Ingredients, 0, len(in))
	for _, ing := range in {
		out = append(out, models.Ingredient{
			Name:    strings.TrimSpace(ing.Name),
			Measure: strings.TrimSpace(ing.Measure),
		})
	}
	return out
}

// trimList trims every entry and drops blank trailing input such as an empty
// last row left by a form.
func trimList(in []string) models.StringList {
	out := make(models.StringList, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ToRecipeResponse converts a Recipe to a RecipeResponse.
func ToRecipeResponse(r *models.Recipe) *RecipeResponse {
	resp := &RecipeResponse{
		ID:            formatID(r.ID),
		Title:         r.Title,
		Ingredients:   r.Ingredients,
		Steps:         []string(r.Steps),
		Category:      r.Category,
		Cuisine:       r.Cuisine,
		CookingTime:   r.CookingTime,
		Difficulty:    r.Difficulty,
		Image:         r.Image,
		Source:        r.Source,
		ExternalID:    r.ExternalID,
		SourceURL:     r.SourceURL,
		Summary:       r.Summary,
		Ratings:       make([]RatingResponse, 0, len(r.Ratings)),
		AverageRating: r.AverageRating,
		Tags:          []string(r.Tags),
		Servings:      r.Servings,
		IsVeg:         r.IsVeg,
		CreatedAt:     formatTime(r.CreatedAt),
		UpdatedAt:     formatTime(r.UpdatedAt),
	}
	if r.ID == 0 && r.ExternalID != "" {
		resp.ID = r.ExternalID
	}
	if resp.Ingredients == nil {
		resp.Ingredients = models.Ingredients{}
	}
	if resp.Steps == nil {
		resp.Steps = []string{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	for _, rating := range r.Ratings {
		resp.Ratings = append(resp.Ratings, RatingResponse{User: formatID(rating.UserID), Rating: rating.Rating})
	}
	if r.CreatedBy != nil {
		resp.CreatedBy = &CreatorResponse{
			ID:       formatID(r.CreatedBy.ID),
			Username: r.CreatedBy.Username,
			Name:     r.CreatedBy.Name,
		}
	}
	return resp
}

// ToRecipeResponses converts a slice of recipes.
func ToRecipeResponses(recipes []models.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, *ToRecipeResponse(&recipes[i]))
	}
	return out
}
