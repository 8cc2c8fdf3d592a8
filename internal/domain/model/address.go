package model

import "time"

// Address is a shipping or billing record owned by a customer.
type Address struct {
	ID         int64
	CustomerID int64
	AddressFields
	CreatedAt time.Time
}

// AddressFields holds the postal data of an address.
type AddressFields struct {
	FirstName  string
	LastName   string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}
