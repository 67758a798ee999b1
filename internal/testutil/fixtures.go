package testutil

import (
	"github.com/windoze95/cookiify-api/internal/models"
	"gorm.io/gorm"
)

// TestUser creates a test user with its auth record populated.
func TestUser() *models.User {
	return &models.User{
		Model:    gorm.Model{ID: 1},
		Username: "testuser",
		Name:     "Test User",
		Email:    "test@example.com",
		Role:     models.RoleUser,
		Auth: &models.UserAuth{
			Model:          gorm.Model{ID: 1},
			UserID:         1,
			HashedPassword: "$2a$10$abcdefghijklmnopqrstuuABCDEFGHIJKLMNOPQRSTUVWXYZ012",
			AuthType:       models.Standard,
		},
	}
}

// TestAdmin creates a test user with the admin role.
func TestAdmin() *models.User {
	return &models.User{
		Model:    gorm.Model{ID: 99},
		Username: "admin",
		Name:     "Admin",
		Email:    "admin@example.com",
		Role:     models.RoleAdmin,
	}
}

// TestRecipe creates a valid user-submitted recipe owned by user 1.
func TestRecipe() *models.Recipe {
	ownerID := uint(1)
	return &models.Recipe{
		Model: gorm.Model{ID: 1},
		Title: "Classic Pancakes",
		Ingredients: models.Ingredients{
			{Name: "All-purpose flour", Measure: "1.5 cups"},
			{Name: "Milk", Measure: "1 1/4 cups"},
			{Name: "Egg", Measure: "1"},
			{Name: "Butter", Measure: "3 tbsp"},
		},
		Steps:       models.StringList{"Mix dry ingredients", "Whisk wet ingredients", "Combine and cook on griddle"},
		Category:    "Breakfast",
		Cuisine:     "American",
		CookingTime: 20,
		Difficulty:  models.DifficultyEasy,
		Source:      models.SourceUser,
		CreatedByID: &ownerID,
		Ratings:     models.Ratings{},
		Tags:        models.StringList{"breakfast", "pancakes"},
		Servings:    4,
		IsVeg:       true,
	}
}

// TestImportedRecipe creates a valid recipe imported from TheMealDB.
func TestImportedRecipe(externalID, title, category string) *models.Recipe {
	return &models.Recipe{
		Title:       title,
		Ingredients: models.Ingredients{{Name: "Rice", Measure: "1 cup"}},
		Steps:       models.StringList{"Cook the rice."},
		Category:    category,
		Cuisine:     "Japanese",
		Difficulty:  models.DifficultyEasy,
		Source:      models.SourceTheMealDB,
		ExternalID:  externalID,
		Ratings:     models.Ratings{},
		Tags:        models.StringList{},
		Servings:    4,
		IsVeg:       true,
	}
}
