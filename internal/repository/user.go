package repository

import (
	"errors"
	"strings"

	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserRepository is a repository for interacting with users.
type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser creates a new user together with its auth record.
func (r *UserRepository) CreateUser(user *models.User) (*models.User, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ConflictError{message: "username or email already in use"}
		}
		logger.Get().Error("failed to create user", zap.String("username", user.Username), zap.Error(err))
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := r.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	return &user, nil
}

// GetUserAuthByUsername retrieves a user's authentication information by their username.
func (r *UserRepository) GetUserAuthByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.DB.Preload("Auth").
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	return &user, nil
}

// UpdateUserName updates a user's display name.
func (r *UserRepository) UpdateUserName(userID uint, name string) error {
	err := r.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("name", name).Error
	if err != nil {
		logger.Get().Error("failed to update user name", zap.Uint("user_id", userID), zap.Error(err))
	}
	return err
}

// UsernameExists checks if a username already exists.
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	lowercaseUsername := strings.ToLower(username)
	var user models.User
	err := r.DB.Where("LOWER(username) = ?", lowercaseUsername).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ToggleFavorite adds the recipe to the user's favorites, or removes it if
// it is already there. It returns whether the recipe is now a favorite.
func (r *UserRepository) ToggleFavorite(userID, recipeID uint) (bool, error) {
	var isFavorite bool
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("user_favorites").
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			isFavorite = false
			return tx.Exec("DELETE FROM user_favorites WHERE user_id = ? AND recipe_id = ?", userID, recipeID).Error
		}
		isFavorite = true
		return tx.Exec("INSERT INTO user_favorites (user_id, recipe_id) VALUES (?, ?)", userID, recipeID).Error
	})
	if err != nil {
		logger.Get().Error("failed to toggle favorite", zap.Uint("user_id", userID), zap.Uint("recipe_id", recipeID), zap.Error(err))
		return false, err
	}
	return isFavorite, nil
}

// GetFavorites lists the user's favorite recipes.
func (r *UserRepository) GetFavorites(userID uint) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := r.DB.Model(&models.User{Model: gorm.Model{ID: userID}}).
		Order("recipes.id").
		Association("Favorites").
		Find(&recipes)
	if err != nil {
		logger.Get().Error("failed to get favorites", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	return recipes, nil
}

// GetFavoriteIDs lists the IDs of the user's favorite recipes.
func (r *UserRepository) GetFavoriteIDs(userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.DB.Table("user_favorites").
		Where("user_id = ?", userID).
		Order("recipe_id").
		Pluck("recipe_id", &ids).Error
	return ids, err
}
