package usecase

import (
	"crypto/rand"
	"math/big"
)

const (
	referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	referenceLength   = 10
)

// ReferenceGenerator produces human readable order numbers. Callers
// retry on collision, so implementations need not guarantee uniqueness.
type ReferenceGenerator interface {
	Next() (string, error)
}

// RandomReference draws uppercase alphanumerics from crypto/rand.
type RandomReference struct {
	prefix string
	length int
}

// NewRandomReference returns a generator of prefix followed by ten random characters.
func NewRandomReference(prefix string) *RandomReference {
	return &RandomReference{prefix: prefix, length: referenceLength}
}

// Next returns a fresh reference.
func (g *RandomReference) Next() (string, error) {
	buf := make([]byte, g.length)
	limit := big.NewInt(int64(len(referenceAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = referenceAlphabet[n.Int64()]
	}
	return g.prefix + string(buf), nil
}
