package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

const tokenVersion = "v1"

type claims struct {
	Subject   int64 `json:"sub"`
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// HMACStrategy signs tokens of the form "v1.<claims>.<signature>"
// where both parts are unpadded URL-safe base64.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: now}
}

// IssueToken generates a signed token for the customer.
func (s *HMACStrategy) IssueToken(customerID int64) (string, error) {
	issued := s.now()
	payload, err := json.Marshal(claims{
		Subject:   customerID,
		IssuedAt:  issued.Unix(),
		ExpiresAt: issued.Add(s.ttl).Unix(),
	})
	if err != nil {
		return "", err
	}
	body := tokenVersion + "." + base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + s.sign(body), nil
}

// ParseToken validates token and returns the customer ID it was issued for.
func (s *HMACStrategy) ParseToken(token string) (int64, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != tokenVersion {
		return 0, ErrInvalidToken
	}

	body := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(s.sign(body)), []byte(parts[2])) {
		return 0, ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return 0, ErrInvalidToken
	}

	var c claims
	if err := json.Unmarshal(raw, &c); err != nil || c.Subject <= 0 {
		return 0, ErrInvalidToken
	}

	if !s.now().Before(time.Unix(c.ExpiresAt, 0)) {
		return 0, ErrInvalidToken
	}

	return c.Subject, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
