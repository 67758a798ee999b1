package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/service"
	"github.com/windoze95/cookiify-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setUser is a test middleware that injects a user into the gin context.
func setUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set("user", user)
		}
		c.Next()
	}
}

// testEnvelope mirrors Envelope with the payload left raw.
type testEnvelope struct {
	Success      bool            `json:"success"`
	Data         json.RawMessage `json:"data"`
	Cached       *bool           `json:"cached"`
	Source       string          `json:"source"`
	TotalResults *int            `json:"totalResults"`
	Message      string          `json:"message"`
	Error        string          `json:"error"`
}

func serve(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v. body: %s", err, w.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env testEnvelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("data does not decode: %v. data: %s", err, env.Data)
	}
}

func newRecipeRouter(user *models.User) (*gin.Engine, *testutil.MockRecipeRepo) {
	repo := testutil.NewMockRecipeRepo()
	svc := service.NewRecipeService(&config.Config{}, repo, testutil.NewMockUserRepo(repo))
	handler := NewRecipeHandler(svc)

	r := gin.New()
	r.Use(setUser(user))
	r.GET("/recipes", handler.ListRecipes)
	r.GET("/recipes/featured", handler.GetFeaturedRecipes)
	r.GET("/recipes/categories", handler.GetCategories)
	r.GET("/recipes/:recipe_id", handler.GetRecipe)
	r.POST("/recipes", handler.CreateRecipe)
	r.PUT("/recipes/:recipe_id", handler.UpdateRecipe)
	r.DELETE("/recipes/:recipe_id", handler.DeleteRecipe)
	r.POST("/recipes/:recipe_id/favorite", handler.ToggleFavorite)
	return r, repo
}

func TestGetRecipe_Valid(t *testing.T) {
	r, repo := newRecipeRouter(nil)
	repo.Add(testutil.TestRecipe())

	w := serve(r, "GET", "/recipes/1", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("success = false, want true")
	}
	var recipe service.RecipeResponse
	decodeData(t, env, &recipe)
	if recipe.Title != "Classic Pancakes" {
		t.Errorf("recipe title = %v, want 'Classic Pancakes'", recipe.Title)
	}
}

func TestGetRecipe_InvalidID(t *testing.T) {
	r, _ := newRecipeRouter(nil)

	w := serve(r, "GET", "/recipes/abc", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	env := decodeEnvelope(t, w)
	if env.Success || env.Error != codeInvalidRequest {
		t.Errorf("envelope = %+v, want failure with %s", env, codeInvalidRequest)
	}
}

func TestGetRecipe_NotFound(t *testing.T) {
	r, _ := newRecipeRouter(nil)

	w := serve(r, "GET", "/recipes/999", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if env := decodeEnvelope(t, w); env.Message != "Recipe not found" {
		t.Errorf("message = %q, want 'Recipe not found'", env.Message)
	}
}

func TestListRecipes_FiltersAndPaginates(t *testing.T) {
	r, repo := newRecipeRouter(nil)
	repo.Add(testutil.TestRecipe())
	repo.Add(testutil.TestImportedRecipe("52772", "Teriyaki Chicken", "Dinner"))
	repo.Add(testutil.TestImportedRecipe("52773", "Onigiri", "Lunch"))

	w := serve(r, "GET", "/recipes?category=Dinner&limit=5", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var page service.RecipeListResponse
	decodeData(t, decodeEnvelope(t, w), &page)
	if len(page.Recipes) != 1 || page.Recipes[0].Title != "Teriyaki Chicken" {
		t.Errorf("recipes = %+v, want only Teriyaki Chicken", page.Recipes)
	}
	if page.Pagination.Limit != 5 || page.Pagination.Total != 1 || page.Pagination.Pages != 1 {
		t.Errorf("pagination = %+v", page.Pagination)
	}
}

func TestListRecipes_InvalidCreatedBy(t *testing.T) {
	r, _ := newRecipeRouter(nil)

	w := serve(r, "GET", "/recipes?createdBy=me", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetCategories(t *testing.T) {
	r, repo := newRecipeRouter(nil)
	repo.Add(testutil.TestRecipe())
	repo.Add(testutil.TestImportedRecipe("52772", "Teriyaki Chicken", "Dinner"))

	w := serve(r, "GET", "/recipes/categories", nil)

	var categories []string
	decodeData(t, decodeEnvelope(t, w), &categories)
	if len(categories) != 2 || categories[0] != "Breakfast" || categories[1] != "Dinner" {
		t.Errorf("categories = %v, want [Breakfast Dinner]", categories)
	}
}

func TestCreateRecipe_RequiresUser(t *testing.T) {
	r, _ := newRecipeRouter(nil)

	w := serve(r, "POST", "/recipes", map[string]any{"title": "Toast"})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestCreateRecipe_Success(t *testing.T) {
	r, repo := newRecipeRouter(testutil.TestUser())

	w := serve(r, "POST", "/recipes", map[string]any{
		"title":       "Garlic Toast",
		"ingredients": []map[string]string{{"name": "Bread", "measure": "2 slices"}, {"name": "Garlic"}},
		"steps":       []string{"Toast the bread.", "Rub with garlic."},
		"category":    "Snack",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var recipe service.RecipeResponse
	decodeData(t, decodeEnvelope(t, w), &recipe)
	if recipe.Cuisine != models.DefaultCuisine || recipe.Servings != models.DefaultServings {
		t.Errorf("defaults not applied: %+v", recipe)
	}
	if recipe.CreatedBy == nil || recipe.CreatedBy.Username != "testuser" {
		t.Errorf("createdBy = %+v, want testuser", recipe.CreatedBy)
	}
	if len(repo.Recipes) != 1 {
		t.Errorf("stored recipes = %d, want 1", len(repo.Recipes))
	}
}

func TestCreateRecipe_ValidationError(t *testing.T) {
	r, _ := newRecipeRouter(testutil.TestUser())

	w := serve(r, "POST", "/recipes", map[string]any{"title": "Toast", "category": "Snack"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpdateRecipe_Forbidden(t *testing.T) {
	stranger := testutil.TestUser()
	stranger.ID = 2
	r, repo := newRecipeRouter(stranger)
	repo.Add(testutil.TestRecipe())

	w := serve(r, "PUT", "/recipes/1", map[string]any{
		"title":       "Hijacked Pancakes",
		"ingredients": []map[string]string{{"name": "Flour"}},
		"steps":       []string{"Mix."},
		"category":    "Breakfast",
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if repo.Recipes[1].Title != "Classic Pancakes" {
		t.Errorf("title = %q, recipe should be unchanged", repo.Recipes[1].Title)
	}
}

func TestDeleteRecipe_Owner(t *testing.T) {
	r, repo := newRecipeRouter(testutil.TestUser())
	repo.Add(testutil.TestRecipe())

	w := serve(r, "DELETE", "/recipes/1", nil)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if _, ok := repo.Recipes[1]; ok {
		t.Error("recipe should be deleted")
	}
}

func TestDeleteRecipe_Admin(t *testing.T) {
	r, repo := newRecipeRouter(testutil.TestAdmin())
	repo.Add(testutil.TestRecipe())

	w := serve(r, "DELETE", "/recipes/1", nil)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestToggleFavorite(t *testing.T) {
	r, repo := newRecipeRouter(testutil.TestUser())
	repo.Add(testutil.TestRecipe())

	w := serve(r, "POST", "/recipes/1/favorite", nil)

	var fav service.FavoriteResponse
	decodeData(t, decodeEnvelope(t, w), &fav)
	if !fav.IsFavorite || len(fav.Favorites) != 1 || fav.Favorites[0] != "1" {
		t.Errorf("favorite = %+v, want favorited [1]", fav)
	}

	w = serve(r, "POST", "/recipes/1/favorite", nil)
	decodeData(t, decodeEnvelope(t, w), &fav)
	if fav.IsFavorite || len(fav.Favorites) != 0 {
		t.Errorf("favorite = %+v, want unfavorited", fav)
	}
}
