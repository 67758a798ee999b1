package service

import (
	"fmt"
	"regexp"
	"strings"

	goaway "github.com/TwiN/go-away"
	"github.com/asaskevich/govalidator"
	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Username and display name bounds.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxNameLength     = 50
)

const invalidCredentials = "invalid username or password"

var forbiddenUsernames = []string{
	"admin",
	"administrator",
	"root",
	"sys",
	"sysadmin",
	"system",
	"test",
	"testuser",
	"login",
	"logout",
	"register",
	"password",
	"user",
	"newuser",
	"support",
	"help",
	"faq",
	"api",
	"cookiify",
	"cookiifyadmin",
	"spoonacular",
	"themealdb",
}

var (
	hasUppercase   = regexp.MustCompile(`[A-Z]`)
	hasLowercase   = regexp.MustCompile(`[a-z]`)
	hasNumber      = regexp.MustCompile(`\d`)
	hasSpecialChar = regexp.MustCompile(`[!@#$%^&*]`)
)

// UserService is the business logic layer for user-related operations.
type UserService struct {
	Cfg  *config.Config
	Repo repository.UserRepo
}

// UserResponse is the response object for user-related operations.
type UserResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt string          `json:"createdAt,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}

// NewUserService is the constructor function for initializing a new UserService
func NewUserService(cfg *config.Config, repo repository.UserRepo) *UserService {
	return &UserService{
		Cfg:  cfg,
		Repo: repo,
	}
}

// CreateUser validates the registration fields and creates a new user.
func (s *UserService) CreateUser(username, name, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if err := s.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := s.ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username: username,
		Name:     name,
		Email:    email,
		Role:     models.RoleUser,
		Auth: &models.UserAuth{
			HashedPassword: string(hashedPassword),
			AuthType:       models.Standard,
		},
	}

	user, err = s.Repo.CreateUser(user)
	if err != nil {
		return nil, fromRepoError(err)
	}

	return user, nil
}

// LoginUser checks a username and password pair.
func (s *UserService) LoginUser(username, password string) (*models.User, error) {
	user, err := s.Repo.GetUserAuthByUsername(strings.TrimSpace(username))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(ErrUnauthorized, invalidCredentials)
		}
		return nil, err
	}
	if user.Auth == nil {
		return nil, newError(ErrUnauthorized, invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Auth.HashedPassword), []byte(password)); err != nil {
		return nil, newError(ErrUnauthorized, invalidCredentials)
	}

	return user, nil
}

// GetUserByID gets a user by their ID.
func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(userID)
	if err != nil {
		return nil, fromRepoError(err)
	}
	return user, nil
}

// UpdateName changes the user's display name.
func (s *UserService) UpdateName(user *models.User, name string) error {
	name = strings.TrimSpace(name)
	if err := s.ValidateName(name); err != nil {
		return err
	}
	if err := s.Repo.UpdateUserName(user.ID, name); err != nil {
		return err
	}
	user.Name = name
	return nil
}

// ValidateUsername validates a username against a set of rules.
func (s *UserService) ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return newError(ErrClient, fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	}
	if len(username) > MaxUsernameLength {
		return newError(ErrClient, fmt.Sprintf("username cannot exceed %d characters", MaxUsernameLength))
	}
	if !govalidator.IsAlphanumeric(username) {
		return newError(ErrClient, "username can only contain alphanumeric characters")
	}

	for _, forbidden := range forbiddenUsernames {
		if strings.EqualFold(username, forbidden) {
			return newError(ErrClient, fmt.Sprintf("username '%s' is not allowed", username))
		}
	}

	profanityDetector := goaway.NewProfanityDetector().WithSanitizeLeetSpeak(true).WithSanitizeSpecialCharacters(true).WithSanitizeAccents(false)
	if profanityDetector.IsProfane(username) {
		return newError(ErrClient, "username contains inappropriate language")
	}

	// Also caught as a ConflictError by the repository.
	exists, err := s.Repo.UsernameExists(username)
	if err != nil {
		return fmt.Errorf("error checking username: %w", err)
	}
	if exists {
		return newError(ErrConflict, "username is already taken")
	}

	return nil
}

// ValidateName checks the display name length.
func (s *UserService) ValidateName(name string) error {
	if name == "" {
		return newError(ErrClient, "name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return newError(ErrClient, fmt.Sprintf("name cannot exceed %d characters", MaxNameLength))
	}
	return nil
}

// ValidateEmail validates an email address against a set of rules.
func (s *UserService) ValidateEmail(email string) error {
	if !govalidator.IsEmail(email) {
		return newError(ErrClient, "invalid email format")
	}
	return nil
}

// ValidatePassword validates a password against a set of rules.
func (s *UserService) ValidatePassword(password string) error {
	switch {
	case len(password) < 8:
		return newError(ErrClient, "password must be at least 8 characters long")
	case !hasUppercase.MatchString(password):
		return newError(ErrClient, "password must contain at least one uppercase letter")
	case !hasLowercase.MatchString(password):
		return newError(ErrClient, "password must contain at least one lowercase letter")
	case !hasNumber.MatchString(password):
		return newError(ErrClient, "password must contain at least one digit")
	case !hasSpecialChar.MatchString(password):
		return newError(ErrClient, "password must contain at least one special character")
	}
	return nil
}

// ToUserResponse converts a User to a UserResponse.
func ToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        formatID(user.ID),
		Username:  user.Username,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}
