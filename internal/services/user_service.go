package services

import (
	"context"
	"errors"
	"fmt"

	"spur-go/internal/models"
	"spur-go/internal/storage"
)

// ErrUserNotFound is returned when a profile is requested for an unknown ID.
var ErrUserNotFound = errors.New("user not found")

// UserService defines the interface for user profile operations.
type UserService interface {
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
}

type userService struct {
	userRepo storage.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetUserProfile returns the user's own profile, without credentials.
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", userID, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	user.PasswordHash = ""
	return user, nil
}
