package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/testutil"
	"gorm.io/gorm"
)

func newTestReviewService() (*ReviewService, *testutil.MockRecipeRepo) {
	recipes := testutil.NewMockRecipeRepo()
	recipes.Add(testutil.TestRecipe())
	return NewReviewService(&config.Config{}, testutil.NewMockReviewRepo(recipes)), recipes
}

func reviewer(id uint) *models.User {
	return &models.User{Model: gorm.Model{ID: id}, Username: "reviewer", Role: models.RoleUser}
}

func TestCreateReview_AverageFollowsRatings(t *testing.T) {
	svc, recipes := newTestReviewService()

	steps := []struct {
		user   uint
		rating int
		want   float64
	}{
		{user: 2, rating: 4, want: 4},
		{user: 3, rating: 5, want: 4.5},
		{user: 4, rating: 2, want: 3.7},
	}
	for _, step := range steps {
		resp, err := svc.CreateReview(reviewer(step.user), ReviewInput{RecipeID: 1, Rating: step.rating})
		if err != nil {
			t.Fatalf("CreateReview error: %v", err)
		}
		if resp.AverageRating != step.want {
			t.Errorf("AverageRating after user %d = %v, want %v", step.user, resp.AverageRating, step.want)
		}
	}

	recipe, _ := recipes.GetRecipeByID(1)
	if len(recipe.Ratings) != 3 {
		t.Errorf("Ratings count = %d, want 3", len(recipe.Ratings))
	}
}

func TestCreateReview_DuplicateIsConflict(t *testing.T) {
	svc, recipes := newTestReviewService()

	if _, err := svc.CreateReview(reviewer(2), ReviewInput{RecipeID: 1, Rating: 4}); err != nil {
		t.Fatalf("CreateReview error: %v", err)
	}
	_, err := svc.CreateReview(reviewer(2), ReviewInput{RecipeID: 1, Rating: 1})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate CreateReview err = %v, want ErrConflict", err)
	}

	recipe, _ := recipes.GetRecipeByID(1)
	if recipe.AverageRating != 4 || len(recipe.Ratings) != 1 {
		t.Errorf("recipe ratings = %+v avg %v, want unchanged", recipe.Ratings, recipe.AverageRating)
	}
}

func TestCreateReview_MissingRecipe(t *testing.T) {
	svc, _ := newTestReviewService()

	_, err := svc.CreateReview(reviewer(2), ReviewInput{RecipeID: 99, Rating: 4})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateReview err = %v, want ErrNotFound", err)
	}
}

func TestCreateReview_Validation(t *testing.T) {
	svc, _ := newTestReviewService()

	inputs := []ReviewInput{
		{RecipeID: 1, Rating: 0},
		{RecipeID: 1, Rating: 6},
		{RecipeID: 1, Rating: 3, Comment: strings.Repeat("a", 501)},
		{Rating: 3},
	}
	for _, in := range inputs {
		if _, err := svc.CreateReview(reviewer(2), in); !errors.Is(err, ErrClient) {
			t.Errorf("CreateReview(%+v) err = %v, want ErrClient", in, err)
		}
	}
}

func TestUpdateReview_OwnerOnly(t *testing.T) {
	svc, _ := newTestReviewService()
	created, err := svc.CreateReview(reviewer(2), ReviewInput{RecipeID: 1, Rating: 2})
	if err != nil {
		t.Fatalf("CreateReview error: %v", err)
	}

	_, err = svc.UpdateReview(testutil.TestAdmin(), 1, ReviewInput{Rating: 5})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("UpdateReview by admin err = %v, want ErrForbidden", err)
	}

	resp, err := svc.UpdateReview(reviewer(2), 1, ReviewInput{Rating: 5, Comment: "Better second time"})
	if err != nil {
		t.Fatalf("UpdateReview error: %v", err)
	}
	if resp.AverageRating != 5 || resp.RatingCount != 1 {
		t.Errorf("after update avg = %v count = %d, want 5 and 1", resp.AverageRating, resp.RatingCount)
	}
	if resp.Review.ID != created.Review.ID || resp.Review.Comment != "Better second time" {
		t.Errorf("Review = %+v", resp.Review)
	}
}

func TestDeleteReview_OwnerOrAdmin(t *testing.T) {
	svc, recipes := newTestReviewService()
	if _, err := svc.CreateReview(reviewer(2), ReviewInput{RecipeID: 1, Rating: 4}); err != nil {
		t.Fatalf("CreateReview error: %v", err)
	}
	if _, err := svc.CreateReview(reviewer(3), ReviewInput{RecipeID: 1, Rating: 2}); err != nil {
		t.Fatalf("CreateReview error: %v", err)
	}

	if _, err := svc.DeleteReview(reviewer(3), 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("DeleteReview by stranger err = %v, want ErrForbidden", err)
	}

	resp, err := svc.DeleteReview(testutil.TestAdmin(), 1)
	if err != nil {
		t.Fatalf("DeleteReview by admin error: %v", err)
	}
	if resp.AverageRating != 2 || resp.RatingCount != 1 {
		t.Errorf("after delete avg = %v count = %d, want 2 and 1", resp.AverageRating, resp.RatingCount)
	}

	resp, err = svc.DeleteReview(reviewer(3), 2)
	if err != nil {
		t.Fatalf("DeleteReview by owner error: %v", err)
	}
	if resp.AverageRating != 0 || resp.RatingCount != 0 {
		t.Errorf("after last delete avg = %v count = %d, want 0 and 0", resp.AverageRating, resp.RatingCount)
	}

	recipe, _ := recipes.GetRecipeByID(1)
	if len(recipe.Ratings) != 0 {
		t.Errorf("Ratings = %+v, want empty", recipe.Ratings)
	}
}

func TestDeleteReview_Missing(t *testing.T) {
	svc, _ := newTestReviewService()

	if _, err := svc.DeleteReview(testutil.TestAdmin(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteReview err = %v, want ErrNotFound", err)
	}
}

func TestListByRecipe_NewestFirst(t *testing.T) {
	svc, _ := newTestReviewService()
	for _, id := range []uint{2, 3} {
		if _, err := svc.CreateReview(reviewer(id), ReviewInput{RecipeID: 1, Rating: 3}); err != nil {
			t.Fatalf("CreateReview error: %v", err)
		}
	}

	reviews, err := svc.ListByRecipe(1)
	if err != nil {
		t.Fatalf("ListByRecipe error: %v", err)
	}
	if len(reviews) != 2 || reviews[0].ID != "2" {
		t.Errorf("reviews = %+v, want review 2 first", reviews)
	}
}
