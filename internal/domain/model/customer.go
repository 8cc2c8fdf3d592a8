package model

import "time"

// Customer represents a registered storefront account.
type Customer struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
