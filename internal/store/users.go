package store

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type CreateUserInput struct {
	Username string
	Password string
	Email    *string
	FullName *string
}

func validateCredentials(username, password string) error {
	if len(username) < 3 {
		return fmt.Errorf("%w: username must be at least 3 characters", ErrValidation)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username may only contain letters, digits, hyphens and underscores", ErrValidation)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	return nil
}

// CreateUser registers an account. The first user ever created is an Admin;
// everyone after that defaults to Collaborator.
func CreateUser(gdb *gorm.DB, input CreateUserInput) (*models.User, error) {
	if err := validateCredentials(input.Username, input.Password); err != nil {
		return nil, err
	}

	var existing models.User

	err := gdb.Where("username = ?", input.Username).First(&existing).Error

	if err == nil {
		return nil, fmt.Errorf("%w: username already registered", ErrConflict)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	var count int64

	if err := gdb.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, err
	}

	role := types.RoleCollaborator
	if count == 0 {
		role = types.RoleAdmin
	}

	email := input.Email
	if email == nil || *email == "" {
		email = &input.Username
	}

	fullName := input.FullName
	if fullName == nil || *fullName == "" {
		fullName = &input.Username
	}

	user := models.User{
		Username:     input.Username,
		Email:        email,
		FullName:     fullName,
		Role:         role,
		PasswordHash: string(passwordHash),
	}

	if err := gdb.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func GetUserByUsername(gdb *gorm.DB, username string) (*models.User, error) {
	var user models.User

	if err := gdb.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// Authenticate verifies a username/password pair and stamps last_login.
func Authenticate(gdb *gorm.DB, username, password string) (*models.User, error) {
	user, err := GetUserByUsername(gdb, username)

	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	if err := gdb.Model(user).Update("last_login", &now).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func ListCollaborators(gdb *gorm.DB, excludeUserID uint) ([]models.User, error) {
	var users []models.User

	err := gdb.Where("id != ? AND role = ?", excludeUserID, types.RoleCollaborator).
		Order("full_name ASC").
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}

func UpdateUserRole(gdb *gorm.DB, userID uint, role string) (*models.User, error) {
	if role != types.RoleAdmin && role != types.RoleCollaborator {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}

	var user models.User

	if err := gdb.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := gdb.Model(&user).Update("role", role).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func DeleteUser(gdb *gorm.DB, userID uint) (*models.User, error) {
	var user models.User

	if err := gdb.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := gdb.Delete(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// CreateAdminUser provisions another Admin account. An existing username is
// returned as-is rather than treated as a conflict.
func CreateAdminUser(gdb *gorm.DB, input CreateUserInput) (*models.User, error) {
	existing, err := GetUserByUsername(gdb, input.Username)

	if err == nil {
		return existing, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user, err := CreateUser(gdb, input)

	if err != nil {
		return nil, err
	}

	if user.Role != types.RoleAdmin {
		if err := gdb.Model(user).Update("role", types.RoleAdmin).Error; err != nil {
			return nil, err
		}
	}

	return user, nil
}
