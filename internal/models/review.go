package models

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

// Review bounds.
const (
	MinReviewRating     = 1
	MaxReviewRating     = 5
	MaxReviewCommentLen = 500
)

// Review is the model for a user's review of a recipe. A user may review a
// given recipe at most once.
type Review struct {
	gorm.Model
	UserID   uint    `gorm:"not null;uniqueIndex:idx_review_user_recipe"`
	User     *User   `gorm:"foreignKey:UserID"`
	RecipeID uint    `gorm:"not null;uniqueIndex:idx_review_user_recipe;index"`
	Recipe   *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Rating   int     `gorm:"not null"`
	Comment  string  `gorm:"size:500"`
}

// Validate checks the review's rating and comment bounds.
func (r *Review) Validate() error {
	if r.Rating < MinReviewRating || r.Rating > MaxReviewRating {
		return &ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if utf8.RuneCountInString(r.Comment) > MaxReviewCommentLen {
		return &ValidationError{Field: "comment", Message: "cannot exceed 500 characters"}
	}
	return nil
}
