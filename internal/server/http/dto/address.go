package dto

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// AddressRequest is an inline postal address.
type AddressRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Fields converts the request into domain address fields.
func (r AddressRequest) Fields() model.AddressFields {
	return model.AddressFields{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Phone:      r.Phone,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// AddressResponse is a saved address.
type AddressResponse struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone,omitempty"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAddressResponse maps a domain address.
func NewAddressResponse(a *model.Address) *AddressResponse {
	if a == nil {
		return nil
	}
	return &AddressResponse{
		ID:         a.ID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		CreatedAt:  a.CreatedAt,
	}
}
