package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/repository"
	"github.com/windoze95/cookiify-api/internal/upstream"
)

// --- MockSpoonacular ---

// MockSpoonacular is a mock implementation of upstream.SpoonacularAPI. Calls
// counts every invocation so tests can assert that the provider was skipped.
type MockSpoonacular struct {
	ComplexSearchFunc        func(ctx context.Context, params upstream.SearchParams) (*upstream.SpoonacularSearchResult, error)
	RecipeInformationFunc    func(ctx context.Context, id string) (*upstream.SpoonacularRecipe, error)
	RecipeInformationRawFunc func(ctx context.Context, id string) (json.RawMessage, error)
	FindByIngredientsFunc    func(ctx context.Context, ingredients []string, number int) (*upstream.SuggestionResult, error)

	Calls atomic.Int32
}

func (m *MockSpoonacular) ComplexSearch(ctx context.Context, params upstream.SearchParams) (*upstream.SpoonacularSearchResult, error) {
	m.Calls.Add(1)
	if m.ComplexSearchFunc != nil {
		return m.ComplexSearchFunc(ctx, params)
	}
	return nil, fmt.Errorf("ComplexSearch not configured")
}

func (m *MockSpoonacular) RecipeInformation(ctx context.Context, id string) (*upstream.SpoonacularRecipe, error) {
	m.Calls.Add(1)
	if m.RecipeInformationFunc != nil {
		return m.RecipeInformationFunc(ctx, id)
	}
	return nil, fmt.Errorf("RecipeInformation not configured")
}

func (m *MockSpoonacular) RecipeInformationRaw(ctx context.Context, id string) (json.RawMessage, error) {
	m.Calls.Add(1)
	if m.RecipeInformationRawFunc != nil {
		return m.RecipeInformationRawFunc(ctx, id)
	}
	return nil, fmt.Errorf("RecipeInformationRaw not configured")
}

func (m *MockSpoonacular) FindByIngredients(ctx context.Context, ingredients []string, number int) (*upstream.SuggestionResult, error) {
	m.Calls.Add(1)
	if m.FindByIngredientsFunc != nil {
		return m.FindByIngredientsFunc(ctx, ingredients, number)
	}
	return nil, fmt.Errorf("FindByIngredients not configured")
}

// --- MockMealDB ---

// MockMealDB is a mock implementation of upstream.MealDBAPI.
type MockMealDB struct {
	SearchFunc           func(ctx context.Context, query string) (*upstream.MealBatch, error)
	LookupFunc           func(ctx context.Context, id string) (*upstream.Meal, error)
	FilterByCategoryFunc func(ctx context.Context, category string) ([]upstream.MealSummary, error)

	Calls atomic.Int32
}

func (m *MockMealDB) Search(ctx context.Context, query string) (*upstream.MealBatch, error) {
	m.Calls.Add(1)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return nil, fmt.Errorf("Search not configured")
}

func (m *MockMealDB) Lookup(ctx context.Context, id string) (*upstream.Meal, error) {
	m.Calls.Add(1)
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, id)
	}
	return nil, fmt.Errorf("Lookup not configured")
}

func (m *MockMealDB) FilterByCategory(ctx context.Context, category string) ([]upstream.MealSummary, error) {
	m.Calls.Add(1)
	if m.FilterByCategoryFunc != nil {
		return m.FilterByCategoryFunc(ctx, category)
	}
	return nil, fmt.Errorf("FilterByCategory not configured")
}

// --- MockRecipeRepo ---

// MockRecipeRepo is an in-memory mock implementation of repository.RecipeRepo.
type MockRecipeRepo struct {
	mu      sync.Mutex
	Recipes map[uint]*models.Recipe
	NextID  uint

	// Error overrides: set these to force specific methods to return errors.
	CreateRecipeErr  error
	GetRecipeByIDErr error
	DeleteRecipeErr  error
	ListRecipesErr   error
}

// NewMockRecipeRepo creates a new MockRecipeRepo with initialized maps.
func NewMockRecipeRepo() *MockRecipeRepo {
	return &MockRecipeRepo{
		Recipes: make(map[uint]*models.Recipe),
		NextID:  1,
	}
}

// Add stores recipe as is, assigning an ID when it has none.
func (m *MockRecipeRepo) Add(recipe *models.Recipe) *models.Recipe {
	m.mu.Lock()
	defer m.mu.Unlock()

	if recipe.ID == 0 {
		recipe.ID = m.NextID
	}
	if recipe.ID >= m.NextID {
		m.NextID = recipe.ID + 1
	}
	m.Recipes[recipe.ID] = recipe
	return recipe
}

// sorted returns the stored recipes ordered by ID. Callers hold mu.
func (m *MockRecipeRepo) sorted() []models.Recipe {
	recipes := make([]models.Recipe, 0, len(m.Recipes))
	for _, r := range m.Recipes {
		recipes = append(recipes, *r)
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID < recipes[j].ID })
	return recipes
}

func (m *MockRecipeRepo) ListRecipes(filter repository.RecipeFilter) ([]models.Recipe, int64, error) {
	if m.ListRecipesErr != nil {
		return nil, 0, m.ListRecipesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var recipes []models.Recipe
	for _, r := range m.sorted() {
		if filter.Search != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.Cuisine != "" && r.Cuisine != filter.Cuisine {
			continue
		}
		if filter.Difficulty != "" && r.Difficulty != filter.Difficulty {
			continue
		}
		if filter.IsVeg != nil && r.IsVeg != *filter.IsVeg {
			continue
		}
		if filter.CreatedByID != nil && !r.IsOwnedBy(*filter.CreatedByID) {
			continue
		}
		recipes = append(recipes, r)
	}
	if filter.Sort == repository.SortRating {
		sort.SliceStable(recipes, func(i, j int) bool { return recipes[i].AverageRating > recipes[j].AverageRating })
	}
	total := int64(len(recipes))

	start := (filter.Page - 1) * filter.Limit
	if start >= len(recipes) {
		return []models.Recipe{}, total, nil
	}
	end := start + filter.Limit
	if end > len(recipes) {
		end = len(recipes)
	}
	return recipes[start:end], total, nil
}

func (m *MockRecipeRepo) GetFeaturedRecipes(limit int) ([]models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recipes := m.sorted()
	sort.SliceStable(recipes, func(i, j int) bool { return recipes[i].AverageRating > recipes[j].AverageRating })
	if len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}

func (m *MockRecipeRepo) GetRecipeByID(recipeID uint) (*models.Recipe, error) {
	if m.GetRecipeByIDErr != nil {
		return nil, m.GetRecipeByIDErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.Recipes[recipeID]
	if !ok {
		return nil, repository.NewNotFoundError("Recipe not found")
	}
	copied := *r
	return &copied, nil
}

func (m *MockRecipeRepo) CreateRecipe(recipe *models.Recipe) error {
	if m.CreateRecipeErr != nil {
		return m.CreateRecipeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	recipe.ID = m.NextID
	m.NextID++
	m.Recipes[recipe.ID] = recipe
	return nil
}

func (m *MockRecipeRepo) CreateRecipes(recipes []*models.Recipe) error {
	for _, r := range recipes {
		if err := m.CreateRecipe(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockRecipeRepo) UpdateRecipe(recipe *models.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.Recipes[recipe.ID]
	if !ok {
		return repository.NewNotFoundError("Recipe not found")
	}
	updated := *recipe
	updated.Ratings = existing.Ratings
	updated.AverageRating = existing.AverageRating
	m.Recipes[recipe.ID] = &updated
	return nil
}

func (m *MockRecipeRepo) DeleteRecipe(recipeID uint) error {
	if m.DeleteRecipeErr != nil {
		return m.DeleteRecipeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Recipes[recipeID]; !ok {
		return repository.NewNotFoundError("Recipe not found")
	}
	delete(m.Recipes, recipeID)
	return nil
}

func (m *MockRecipeRepo) GetDistinctCategories() ([]string, error) {
	return m.distinct(func(r *models.Recipe) string { return r.Category }), nil
}

func (m *MockRecipeRepo) GetDistinctCuisines() ([]string, error) {
	return m.distinct(func(r *models.Recipe) string { return r.Cuisine }), nil
}

func (m *MockRecipeRepo) distinct(field func(*models.Recipe) string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for _, r := range m.Recipes {
		if v := field(r); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (m *MockRecipeRepo) CountRecipes() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.Recipes)), nil
}

// --- MockReviewRepo ---

// MockReviewRepo is an in-memory mock implementation of repository.ReviewRepo.
// Rating changes are applied to the recipes held by Recipes.
type MockReviewRepo struct {
	mu      sync.Mutex
	Reviews map[uint]*models.Review
	Recipes *MockRecipeRepo
	NextID  uint
}

// NewMockReviewRepo creates a new MockReviewRepo backed by recipes.
func NewMockReviewRepo(recipes *MockRecipeRepo) *MockReviewRepo {
	return &MockReviewRepo{
		Reviews: make(map[uint]*models.Review),
		Recipes: recipes,
		NextID:  1,
	}
}

func (m *MockReviewRepo) GetReviewsByRecipeID(recipeID uint) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reviews := []models.Review{}
	for _, r := range m.Reviews {
		if r.RecipeID == recipeID {
			reviews = append(reviews, *r)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID > reviews[j].ID })
	return reviews, nil
}

func (m *MockReviewRepo) GetReviewByID(reviewID uint) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.Reviews[reviewID]
	if !ok {
		return nil, repository.NewNotFoundError("Review not found")
	}
	copied := *r
	return &copied, nil
}

func (m *MockReviewRepo) CreateReview(review *models.Review) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.Reviews {
		if r.UserID == review.UserID && r.RecipeID == review.RecipeID {
			return nil, repository.NewConflictError("You have already reviewed this recipe")
		}
	}
	recipe, err := m.mutateRecipe(review.RecipeID, func(r *models.Recipe) {
		r.SetRating(review.UserID, review.Rating)
	})
	if err != nil {
		return nil, err
	}

	review.ID = m.NextID
	m.NextID++
	stored := *review
	m.Reviews[review.ID] = &stored
	return recipe, nil
}

func (m *MockReviewRepo) UpdateReview(review *models.Review) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.Reviews[review.ID]
	if !ok {
		return nil, repository.NewNotFoundError("Review not found")
	}
	recipe, err := m.mutateRecipe(review.RecipeID, func(r *models.Recipe) {
		r.SetRating(review.UserID, review.Rating)
	})
	if err != nil {
		return nil, err
	}
	existing.Rating = review.Rating
	existing.Comment = review.Comment
	return recipe, nil
}

func (m *MockReviewRepo) DeleteReview(review *models.Review) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Reviews[review.ID]; !ok {
		return nil, repository.NewNotFoundError("Review not found")
	}
	recipe, err := m.mutateRecipe(review.RecipeID, func(r *models.Recipe) {
		r.RemoveRating(review.UserID)
	})
	if err != nil {
		return nil, err
	}
	delete(m.Reviews, review.ID)
	return recipe, nil
}

// mutateRecipe applies fn to the stored recipe and recomputes its average.
func (m *MockReviewRepo) mutateRecipe(recipeID uint, fn func(*models.Recipe)) (*models.Recipe, error) {
	m.Recipes.mu.Lock()
	defer m.Recipes.mu.Unlock()

	r, ok := m.Recipes.Recipes[recipeID]
	if !ok {
		return nil, repository.NewNotFoundError("Recipe not found")
	}
	fn(r)
	r.RecomputeAverageRating()
	copied := *r
	return &copied, nil
}

// --- MockUserRepo ---

// MockUserRepo is an in-memory mock implementation of repository.UserRepo.
type MockUserRepo struct {
	mu        sync.Mutex
	Users     map[uint]*models.User
	Favorites map[uint][]uint
	Recipes   *MockRecipeRepo
	NextID    uint

	CreateUserErr error
}

// NewMockUserRepo creates a new MockUserRepo with initialized maps. recipes
// may be nil when favorites are not exercised.
func NewMockUserRepo(recipes *MockRecipeRepo) *MockUserRepo {
	return &MockUserRepo{
		Users:     make(map[uint]*models.User),
		Favorites: make(map[uint][]uint),
		Recipes:   recipes,
		NextID:    1,
	}
}

// Add stores user as is, assigning an ID when it has none.
func (m *MockUserRepo) Add(user *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == 0 {
		user.ID = m.NextID
	}
	if user.ID >= m.NextID {
		m.NextID = user.ID + 1
	}
	m.Users[user.ID] = user
	return user
}

func (m *MockUserRepo) CreateUser(user *models.User) (*models.User, error) {
	if m.CreateUserErr != nil {
		return nil, m.CreateUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if strings.EqualFold(u.Username, user.Username) || (user.Email != "" && u.Email == user.Email) {
			return nil, repository.NewConflictError("username or email already in use")
		}
	}
	user.ID = m.NextID
	m.NextID++
	m.Users[user.ID] = user
	return user, nil
}

func (m *MockUserRepo) GetUserByID(userID uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.Users[userID]
	if !ok {
		return nil, repository.NewNotFoundError("User not found")
	}
	return u, nil
}

func (m *MockUserRepo) GetUserAuthByUsername(username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, repository.NewNotFoundError("User not found")
}

func (m *MockUserRepo) UpdateUserName(userID uint, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.Users[userID]; ok {
		u.Name = name
	}
	return nil
}

func (m *MockUserRepo) UsernameExists(username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepo) ToggleFavorite(userID, recipeID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.Favorites[userID]
	for i, id := range ids {
		if id == recipeID {
			m.Favorites[userID] = append(ids[:i:i], ids[i+1:]...)
			return false, nil
		}
	}
	ids = append(ids, recipeID)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	m.Favorites[userID] = ids
	return true, nil
}

func (m *MockUserRepo) GetFavorites(userID uint) ([]models.Recipe, error) {
	ids, _ := m.GetFavoriteIDs(userID)
	recipes := []models.Recipe{}
	if m.Recipes == nil {
		return recipes, nil
	}
	for _, id := range ids {
		if r, err := m.Recipes.GetRecipeByID(id); err == nil {
			recipes = append(recipes, *r)
		}
	}
	return recipes, nil
}

func (m *MockUserRepo) GetFavoriteIDs(userID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]uint{}, m.Favorites[userID]...), nil
}

// Compile-time interface checks.
var _ upstream.SpoonacularAPI = (*MockSpoonacular)(nil)
var _ upstream.MealDBAPI = (*MockMealDB)(nil)
var _ repository.RecipeRepo = (*MockRecipeRepo)(nil)
var _ repository.ReviewRepo = (*MockReviewRepo)(nil)
var _ repository.UserRepo = (*MockUserRepo)(nil)
