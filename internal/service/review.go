package service

import (
	"strings"

	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/repository"
)

// ReviewService is the business logic layer for review-related operations.
type ReviewService struct {
	Cfg  *config.Config
	Repo repository.ReviewRepo
}

// ReviewResponse is the response object for review-related operations.
type ReviewResponse struct {
	ID        string           `json:"id"`
	Recipe    string           `json:"recipe"`
	User      *CreatorResponse `json:"user,omitempty"`
	Rating    int              `json:"rating"`
	Comment   string           `json:"comment"`
	CreatedAt string           `json:"createdAt,omitempty"`
	UpdatedAt string           `json:"updatedAt,omitempty"`
}

// ReviewMutationResponse pairs a written review with the recipe's new rating
// aggregate.
type ReviewMutationResponse struct {
	Review        *ReviewResponse `json:"review,omitempty"`
	AverageRating float64         `json:"averageRating"`
	RatingCount   int             `json:"ratingCount"`
}

// ReviewInput is the user-editable part of a review.
type ReviewInput struct {
	RecipeID uint   `json:"recipeId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// NewReviewService is the constructor function for initializing a new ReviewService
func NewReviewService(cfg *config.Config, repo repository.ReviewRepo) *ReviewService {
	return &ReviewService{
		Cfg:  cfg,
		Repo: repo,
	}
}

// ListByRecipe lists a recipe's reviews, newest first.
func (s *ReviewService) ListByRecipe(recipeID uint) ([]ReviewResponse, error) {
	reviews, err := s.Repo.GetReviewsByRecipeID(recipeID)
	if err != nil {
		return nil, err
	}
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, *ToReviewResponse(&reviews[i]))
	}
	return out, nil
}

// CreateReview records user's review of a recipe and its rating.
func (s *ReviewService) CreateReview(user *models.User, input ReviewInput) (*ReviewMutationResponse, error) {
	if input.RecipeID == 0 {
		return nil, newError(ErrClient, "Please provide a recipe")
	}
	review := &models.Review{
		UserID:   user.ID,
		RecipeID: input.RecipeID,
		Rating:   input.Rating,
		Comment:  input.Comment,
	}
	if err := review.Validate(); err != nil {
		return nil, fromValidationError(err)
	}

	recipe, err := s.Repo.CreateReview(review)
	if err != nil {
		return nil, fromRepoError(err)
	}
	review.User = user
	return mutationResponse(review, recipe), nil
}

// UpdateReview changes the rating and comment of a review. Only its author
// may update it.
func (s *ReviewService) UpdateReview(user *models.User, reviewID uint, input ReviewInput) (*ReviewMutationResponse, error) {
	review, err := s.Repo.GetReviewByID(reviewID)
	if err != nil {
		return nil, fromRepoError(err)
	}
	if review.UserID != user.ID {
		return nil, newError(ErrForbidden, "Not authorized to update this review")
	}

	review.Rating = input.Rating
	review.Comment = input.Comment
	if err := review.Validate(); err != nil {
		return nil, fromValidationError(err)
	}

	recipe, err := s.Repo.UpdateReview(review)
	if err != nil {
		return nil, fromRepoError(err)
	}
	review.User = user
	return mutationResponse(review, recipe), nil
}

// DeleteReview removes a review and its rating. The author or an admin may
// delete it.
func (s *ReviewService) DeleteReview(user *models.User, reviewID uint) (*ReviewMutationResponse, error) {
	review, err := s.Repo.GetReviewByID(reviewID)
	if err != nil {
		return nil, fromRepoError(err)
	}
	if review.UserID != user.ID && !user.IsAdmin() {
		return nil, newError(ErrForbidden, "Not authorized to delete this review")
	}

	recipe, err := s.Repo.DeleteReview(review)
	if err != nil {
		return nil, fromRepoError(err)
	}
	return mutationResponse(nil, recipe), nil
}

func mutationResponse(review *models.Review, recipe *models.Recipe) *ReviewMutationResponse {
	resp := &ReviewMutationResponse{}
	if review != nil {
		resp.Review = ToReviewResponse(review)
	}
	if recipe != nil {
		resp.AverageRating = recipe.AverageRating
		resp.RatingCount = len(recipe.Ratings)
	}
	return resp
}

// ToReviewResponse converts a Review to a ReviewResponse.
func ToReviewResponse(r *models.Review) *ReviewResponse {
	resp := &ReviewResponse{
		ID:        formatID(r.ID),
		Recipe:    formatID(r.RecipeID),
		Rating:    r.Rating,
		Comment:   strings.TrimSpace(r.Comment),
		CreatedAt: formatTime(r.CreatedAt),
		UpdatedAt: formatTime(r.UpdatedAt),
	}
	if r.User != nil {
		resp.User = &CreatorResponse{
			ID:       formatID(r.User.ID),
			Username: r.User.Username,
			Name:     r.User.Name,
		}
	}
	return resp
}
