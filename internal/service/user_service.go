package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/huzaifanaeem1/todostream/internal/domain"
	"github.com/huzaifanaeem1/todostream/internal/service/auth"
	"github.com/huzaifanaeem1/todostream/internal/store"
)

// ErrInvalidCredentials is returned by Login when the email is unknown or
// the password does not match. The two cases are deliberately not
// distinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User  *domain.User
	Token string
}

// UserService handles registration and login.
type UserService interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type userService struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	tokens auth.JWTService
}

// NewUserService creates a UserService over the given store, hasher, and
// token service.
func NewUserService(users store.UserStore, hasher auth.PasswordHasher, tokens auth.JWTService) UserService {
	return &userService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a user with a bcrypt-hashed password and issues a token.
func (s *userService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the credentials and issues a token.
func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}
