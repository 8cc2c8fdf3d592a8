package test

import (
	"math/rand/v2"
	"strings"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomASCIIString returns a pseudo-random ASCII string within the provided bounds.
// When maxLen equals minLen the resulting string always has that exact length.
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen + rand.IntN(maxLen-minLen+1)

	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(asciiLetters[rand.IntN(len(asciiLetters))])
	}
	return b.String()
}

// RandomEmail returns a unique-looking lower-case address at example.com.
func RandomEmail() string {
	return strings.ToLower(RandomASCIIString(6, 12)) + "@example.com"
}
