package models

import (
	"errors"

	"gorm.io/gorm"
)

// User is the model for a user.
type User struct {
	gorm.Model
	Username  string    `gorm:"unique;index"`
	Name      string    `gorm:"default:null"`
	Email     string    `gorm:"unique;default:null"`
	Role      UserRole  `gorm:"type:text"`
	Auth      *UserAuth `gorm:"foreignKey:UserID"`
	Favorites []*Recipe `gorm:"many2many:user_favorites;"`
}

// UserRole is the type for the UserRole enum.
type UserRole string

// UserRole enum values.
const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsValidRole checks if the Role is valid.
func (u *User) IsValidRole() bool {
	switch u.Role {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// BeforeCreate is a GORM hook that runs before creating a new User.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.IsValidRole() {
		return errors.New("invalid Role provided")
	}
	return nil
}

// UserAuth is the model for a user's authentication information.
type UserAuth struct {
	gorm.Model
	UserID         uint `gorm:"unique;index"`
	HashedPassword string
	AuthType       UserAuthType `gorm:"type:text"`
}

// UserAuthType is the type for the UserAuthType enum.
type UserAuthType string

// UserAuthType enum values.
const (
	Standard UserAuthType = "standard"
)

// IsValidAuthType checks if the AuthType is valid.
func (ua *UserAuth) IsValidAuthType() bool {
	switch ua.AuthType {
	case Standard:
		return true
	default:
		return false
	}
}

// BeforeCreate is a GORM hook that runs before creating a new UserAuth.
func (ua *UserAuth) BeforeCreate(tx *gorm.DB) (err error) {
	if !ua.IsValidAuthType() {
		// Cancel transaction
		return errors.New("invalid AuthType provided")
	}

	return nil
}

// BeforeUpdate is a GORM hook that runs before updating a UserAuth.
func (ua *UserAuth) BeforeUpdate(tx *gorm.DB) (err error) {
	if !ua.IsValidAuthType() {
		// Cancel transaction
		return errors.New("invalid AuthType provided")
	}

	return nil
}
