package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

type UserService struct {
	users  port.UserRepository
	hasher PasswordHasher
}

func NewUserService(users port.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (int64, error) {
	if username == "" || email == "" || password == "" {
		return 0, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	return s.users.CreateUser(ctx, username, email, stored)
}

// ListProfiles returns every user without the password column.
func (s *UserService) ListProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	profiles, err := s.users.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []domain.UserProfile{}
	}
	return profiles, nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	return s.users.GetProfile(ctx, userID)
}

// Authenticate resolves a login attempt to the stored user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
