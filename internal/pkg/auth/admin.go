package auth

import "crypto/subtle"

// AdminGuard authorizes back-office calls with a static bearer token.
type AdminGuard struct {
	token []byte
}

// NewAdminGuard returns a guard. An empty token rejects every request.
func NewAdminGuard(token string) *AdminGuard {
	return &AdminGuard{token: []byte(token)}
}

// Enabled reports whether an admin token is configured.
func (g *AdminGuard) Enabled() bool {
	return len(g.token) > 0
}

// Allow compares candidate with the configured token in constant time.
func (g *AdminGuard) Allow(candidate string) bool {
	if !g.Enabled() || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare(g.token, []byte(candidate)) == 1
}
