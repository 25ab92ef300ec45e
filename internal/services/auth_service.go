package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"spur-go/internal/auth"
	"spur-go/internal/config"
	"spur-go/internal/models"
	"spur-go/internal/storage"
)

var (
	ErrDuplicateUsername  = errors.New("username is already taken")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	usersUsernameUnique = "users_username_unique"
	usersEmailUnique    = "users_email_unique"
)

// AuthService defines the interface for account registration and login.
type AuthService interface {
	Register(ctx context.Context, username, name, email, password string) (*models.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (token string, user *models.User, err error)
}

type authService struct {
	userRepo storage.UserRepository
	cfg      config.AuthConfig
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo storage.UserRepository, cfg config.AuthConfig) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

// Register creates an account. Uniqueness is left to the users table's
// constraints, so two concurrent sign-ups for one username cannot both succeed.
func (s *authService) Register(ctx context.Context, username, name, email, password string) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	newUser := &models.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		switch {
		case storage.IsConstraintViolation(err, storage.UniqueViolation, usersUsernameUnique):
			return nil, ErrDuplicateUsername
		case storage.IsConstraintViolation(err, storage.UniqueViolation, usersEmailUnique):
			return nil, ErrDuplicateEmail
		}
		log.Printf("Error creating user %q: %v", username, err)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	log.Printf("Registered user %d (%s)", newUser.ID, newUser.Username)
	return newUser, nil
}

// Login checks the password of the account named by usernameOrEmail and
// issues a token for it.
func (s *authService) Login(ctx context.Context, usernameOrEmail, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, usernameOrEmail)
	if err != nil {
		return "", nil, fmt.Errorf("looking up user by username: %w", err)
	}
	if user == nil {
		user, err = s.userRepo.GetByEmail(ctx, usernameOrEmail)
		if err != nil {
			return "", nil, fmt.Errorf("looking up user by email: %w", err)
		}
	}
	// An unknown account and a wrong password look the same to the caller.
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.cfg)
	if err != nil {
		return "", nil, fmt.Errorf("issuing token: %w", err)
	}

	return token, user, nil
}
