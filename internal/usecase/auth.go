package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

// AuthUseCase handles customer accounts and token management.
type AuthUseCase struct {
	repos  repository.Factory
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(repos repository.Factory, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{repos: repos, hasher: hasher, tokens: strategy}
}

// Register creates a customer account and returns an auth token.
func (u *AuthUseCase) Register(ctx context.Context, email, name, password string) (*model.Customer, string, error) {
	email, err := validateRegistration(email, password)
	if err != nil {
		return nil, "", err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	customer, err := u.repos.Customers().Create(ctx, email, strings.TrimSpace(name), hash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(customer.ID)
	if err != nil {
		return nil, "", err
	}

	return customer, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*model.Customer, string, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, "", err
	}

	customer, err := u.repos.Customers().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(customer.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(customer.ID)
	if err != nil {
		return nil, "", err
	}

	return customer, token, nil
}

// ParseToken extracts customer ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches customer by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return u.repos.Customers().GetByID(ctx, id)
}
