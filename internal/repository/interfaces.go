package repository

import "github.com/windoze95/cookiify-api/internal/models"

// RecipeSort selects the ordering of a recipe listing.
type RecipeSort string

// RecipeSort values.
const (
	SortNewest RecipeSort = "newest"
	SortOldest RecipeSort = "oldest"
	SortRating RecipeSort = "rating"
)

// RecipeFilter narrows a recipe listing. Zero-valued fields do not filter.
type RecipeFilter struct {
	Search      string
	Category    string
	Cuisine     string
	Difficulty  models.Difficulty
	IsVeg       *bool
	CreatedByID *uint
	Sort        RecipeSort
	Page        int
	Limit       int
}

// RecipeRepo is the interface for recipe repository operations.
type RecipeRepo interface {
	ListRecipes(filter RecipeFilter) ([]models.Recipe, int64, error)
	GetFeaturedRecipes(limit int) ([]models.Recipe, error)
	GetRecipeByID(recipeID uint) (*models.Recipe, error)
	CreateRecipe(recipe *models.Recipe) error
	CreateRecipes(recipes []*models.Recipe) error
	UpdateRecipe(recipe *models.Recipe) error
	DeleteRecipe(recipeID uint) error
	GetDistinctCategories() ([]string, error)
	GetDistinctCuisines() ([]string, error)
	CountRecipes() (int64, error)
}

// ReviewRepo is the interface for review repository operations. Every write
// also persists the reviewed recipe's ratings and average in the same
// transaction.
type ReviewRepo interface {
	GetReviewsByRecipeID(recipeID uint) ([]models.Review, error)
	GetReviewByID(reviewID uint) (*models.Review, error)
	CreateReview(review *models.Review) (*models.Recipe, error)
	UpdateReview(review *models.Review) (*models.Recipe, error)
	DeleteReview(review *models.Review) (*models.Recipe, error)
}

// UserRepo is the interface for user repository operations.
type UserRepo interface {
	CreateUser(user *models.User) (*models.User, error)
	GetUserByID(userID uint) (*models.User, error)
	GetUserAuthByUsername(username string) (*models.User, error)
	UpdateUserName(userID uint, name string) error
	UsernameExists(username string) (bool, error)
	ToggleFavorite(userID, recipeID uint) (bool, error)
	GetFavorites(userID uint) ([]models.Recipe, error)
	GetFavoriteIDs(userID uint) ([]uint, error)
}
