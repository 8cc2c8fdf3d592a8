package auth

import "time"

// Strategy issues and verifies customer session tokens.
type Strategy interface {
	IssueToken(customerID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tunes token lifetime and the clock used to stamp tokens.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}
