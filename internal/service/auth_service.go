package service

import (
	"context"
	"errors"
	"fmt"

	"worklog/internal/middleware"
	"worklog/internal/models"
	"worklog/internal/observability"
	"worklog/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt cost used for new hashes.
var passwordCost = bcrypt.DefaultCost

type AuthService struct {
	users    repository.UserRepository
	validate *Validator
}

func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users, validate: NewValidator()}
}

// CreateUser hashes password and stores a new account. A taken username
// yields models.ErrUserExists.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	if err := s.validate.Validate(LoginForm{Username: username, Password: password}); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, Password: string(hashed)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureUser creates the account unless the username is already taken.
func (s *AuthService) EnsureUser(ctx context.Context, username, password string) error {
	_, err := s.CreateUser(ctx, username, password)
	if errors.Is(err, models.ErrUserExists) {
		return nil
	}
	return err
}

// Authenticate checks form against the stored hash. Unknown usernames and
// wrong passwords both return models.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, form LoginForm) (*models.User, error) {
	if err := s.validate.Validate(form); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, form.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.LoginAttempts.WithLabelValues("unknown_user").Inc()
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		observability.LoginAttempts.WithLabelValues("bad_password").Inc()
		middleware.Logger.InfoContext(ctx, "login rejected", "username", form.Username)
		return nil, models.ErrInvalidCredentials
	}

	observability.LoginAttempts.WithLabelValues("success").Inc()
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}
