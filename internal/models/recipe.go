package models

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

// RecipeSource is the type for the RecipeSource enum.
type RecipeSource string

// RecipeSource enum values.
const (
	SourceUser        RecipeSource = "user"
	SourceTheMealDB   RecipeSource = "themealdb"
	SourceSpoonacular RecipeSource = "spoonacular"
)

// IsValid checks if the RecipeSource is valid.
func (s RecipeSource) IsValid() bool {
	switch s {
	case SourceUser, SourceTheMealDB, SourceSpoonacular:
		return true
	default:
		return false
	}
}

// Difficulty is the type for the Difficulty enum.
type Difficulty string

// Difficulty enum values.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// IsValid checks if the Difficulty is valid.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Recipe defaults applied to records that do not carry their own value.
const (
	DefaultCuisine    = "International"
	DefaultServings   = 4
	DefaultDifficulty = DifficultyMedium
	MinTitleLength    = 3
)

// Recipe is the model for a recipe, whether submitted by a user or imported
// from an upstream provider.
type Recipe struct {
	gorm.Model
	Title         string      `gorm:"not null"`
	Ingredients   Ingredients `gorm:"type:jsonb"`
	Steps         StringList  `gorm:"type:jsonb"`
	Category      string      `gorm:"index;not null"`
	Cuisine       string      `gorm:"index"`
	CookingTime   int         // minutes, 0 when unknown
	Difficulty    Difficulty  `gorm:"type:text"`
	Image         string
	Source        RecipeSource `gorm:"type:text;index"`
	ExternalID    string       `gorm:"index"`
	SourceURL     string
	Summary       string
	CreatedByID   *uint      `gorm:"index"`
	CreatedBy     *User      `gorm:"foreignKey:CreatedByID"`
	Ratings       Ratings    `gorm:"type:jsonb"`
	AverageRating float64    `gorm:"index"`
	Tags          StringList `gorm:"type:jsonb"`
	Servings      int
	IsVeg         bool
}

// ValidationError reports a single field that violates a model invariant.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CalculateAverageRating returns the mean of all ratings rounded to one
// decimal place, or 0 when there are none.
func (r *Recipe) CalculateAverageRating() float64 {
	if len(r.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, rating := range r.Ratings {
		sum += rating.Rating
	}
	mean := float64(sum) / float64(len(r.Ratings))
	return math.Round(mean*10) / 10
}

// RecomputeAverageRating refreshes AverageRating from Ratings.
func (r *Recipe) RecomputeAverageRating() {
	r.AverageRating = r.CalculateAverageRating()
}

// RatingBy returns the rating the given user left, if any.
func (r *Recipe) RatingBy(userID uint) (int, bool) {
	for _, rating := range r.Ratings {
		if rating.UserID == userID {
			return rating.Rating, true
		}
	}
	return 0, false
}

// SetRating records a user's rating, overwriting any earlier one so each user
// holds at most one entry, and recomputes the average.
func (r *Recipe) SetRating(userID uint, value int) {
	replaced := false
	for i := range r.Ratings {
		if r.Ratings[i].UserID == userID {
			r.Ratings[i].Rating = value
			replaced = true
			break
		}
	}
	if !replaced {
		r.Ratings = append(r.Ratings, Rating{UserID: userID, Rating: value})
	}
	r.RecomputeAverageRating()
}

// RemoveRating drops the user's rating, if present, and recomputes the average.
// It reports whether an entry was removed.
func (r *Recipe) RemoveRating(userID uint) bool {
	kept := make(Ratings, 0, len(r.Ratings))
	removed := false
	for _, rating := range r.Ratings {
		if rating.UserID == userID {
			removed = true
			continue
		}
		kept = append(kept, rating)
	}
	r.Ratings = kept
	r.RecomputeAverageRating()
	return removed
}

// IsOwnedBy checks whether the recipe was submitted by the given user.
func (r *Recipe) IsOwnedBy(userID uint) bool {
	return r.CreatedByID != nil && *r.CreatedByID == userID
}

// ApplyDefaults fills unset optional fields with their documented defaults.
func (r *Recipe) ApplyDefaults() {
	if strings.TrimSpace(r.Cuisine) == "" {
		r.Cuisine = DefaultCuisine
	}
	if r.Servings == 0 {
		r.Servings = DefaultServings
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if r.Source == "" {
		r.Source = SourceUser
	}
	if r.Ingredients == nil {
		r.Ingredients = Ingredients{}
	}
	if r.Steps == nil {
		r.Steps = StringList{}
	}
	if r.Tags == nil {
		r.Tags = StringList{}
	}
	if r.Ratings == nil {
		r.Ratings = Ratings{}
	}
}

// Validate checks the invariants a recipe must hold before it is stored.
func (r *Recipe) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(r.Title)) < MinTitleLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("must be at least %d characters long", MinTitleLength)}
	}
	if strings.TrimSpace(r.Category) == "" {
		return &ValidationError{Field: "category", Message: "is required"}
	}
	if len(r.Ingredients) == 0 {
		return &ValidationError{Field: "ingredients", Message: "must not be empty"}
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return &ValidationError{Field: "ingredients", Message: fmt.Sprintf("ingredient %d has no name", i+1)}
		}
	}
	if len(r.Steps) == 0 {
		return &ValidationError{Field: "steps", Message: "must not be empty"}
	}
	for i, step := range r.Steps {
		if strings.TrimSpace(step) == "" {
			return &ValidationError{Field: "steps", Message: fmt.Sprintf("step %d is empty", i+1)}
		}
	}
	if r.CookingTime < 0 {
		return &ValidationError{Field: "cookingTime", Message: "must not be negative"}
	}
	if !r.Difficulty.IsValid() {
		return &ValidationError{Field: "difficulty", Message: "must be one of Easy, Medium, Hard"}
	}
	if !r.Source.IsValid() {
		return &ValidationError{Field: "source", Message: "must be one of user, themealdb, spoonacular"}
	}
	if r.Servings < 1 {
		return &ValidationError{Field: "servings", Message: "must be at least 1"}
	}
	if r.Source == SourceUser && r.CreatedByID == nil {
		return &ValidationError{Field: "createdBy", Message: "is required for user recipes"}
	}
	if r.Source != SourceUser && r.CreatedByID != nil {
		return &ValidationError{Field: "createdBy", Message: "must be empty for imported recipes"}
	}
	for _, rating := range r.Ratings {
		if rating.Rating < MinReviewRating || rating.Rating > MaxReviewRating {
			return &ValidationError{Field: "ratings", Message: "each rating must be between 1 and 5"}
		}
	}
	return nil
}

// BeforeSave is a GORM hook that keeps AverageRating in step with Ratings.
func (r *Recipe) BeforeSave(tx *gorm.DB) (err error) {
	r.RecomputeAverageRating()
	return nil
}
