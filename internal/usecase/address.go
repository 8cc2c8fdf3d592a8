package usecase

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// AddressUseCase manages the customer address book.
type AddressUseCase struct {
	repos repository.Factory
}

// NewAddressUseCase constructs AddressUseCase.
func NewAddressUseCase(repos repository.Factory) *AddressUseCase {
	return &AddressUseCase{repos: repos}
}

// Create validates and stores a new address for the customer.
func (u *AddressUseCase) Create(ctx context.Context, customerID int64, fields model.AddressFields) (*model.Address, error) {
	if err := ValidateAddress("", fields); err != nil {
		return nil, err
	}
	return u.repos.Addresses().Create(ctx, customerID, fields)
}

// List returns saved addresses, newest first.
func (u *AddressUseCase) List(ctx context.Context, customerID int64) ([]model.Address, error) {
	return u.repos.Addresses().ListByCustomer(ctx, customerID)
}
