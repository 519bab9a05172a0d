package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/battled-crew/battled-system/models"
	"github.com/battled-crew/battled-system/repositories"
	"github.com/battled-crew/battled-system/utils"
)

type RegisterUserInput struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	// RegisterUser creates a staff account. Only admins may create other
	// admins; the handler enforces that via capabilities.
	RegisterUser(ctx context.Context, input RegisterUserInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

var validRoles = map[models.UserRole]bool{
	models.RoleAdmin: true,
	models.RoleStaff: true,
	models.RoleMC:    true,
	models.RoleJudge: true,
}

func (s *authService) RegisterUser(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidationFailed)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidationFailed)
	}
	if !validRoles[input.Role] {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, input.Role)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
