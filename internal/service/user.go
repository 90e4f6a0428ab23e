package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// UserService implements admin customer management.
type UserService struct {
	repo       repository.UserRepository
	bcryptCost int
	logger     *slog.Logger
}

// NewUserService creates a new user service hashing passwords with
// bcrypt.DefaultCost.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, bcryptCost: bcrypt.DefaultCost, logger: logger}
}

// CreateUserInput holds the parameters for creating a user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AddressInput holds the parameters for adding a shipping address.
type AddressInput struct {
	FullName   string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
	Phone      string
}

// ListUsers returns one page of users.
func (s *UserService) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, total, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateUser registers a user with a bcrypt-hashed password. The role
// defaults to customer.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if role != domain.RoleCustomer && role != domain.RoleAdmin {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid role %q", role))
	}
	if len(input.Password) < 8 {
		return nil, apperrors.InvalidInput("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("hash password: %v", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		PasswordHash: string(hash),
		Addresses:    []domain.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)
	return user, nil
}

// AddAddress stores a shipping address for an existing user.
func (s *UserService) AddAddress(ctx context.Context, userID string, input AddressInput) (*domain.Address, error) {
	address := &domain.Address{
		ID:         uuid.New().String(),
		UserID:     userID,
		FullName:   input.FullName,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		PostalCode: input.PostalCode,
		Country:    strings.ToUpper(input.Country),
		Phone:      input.Phone,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.AddAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("add address: %w", err)
	}
	return address, nil
}
