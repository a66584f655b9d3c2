package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// NewID32 returns exactly 32 lowercase hex characters. Used as session token ids.
func NewID32() string {
	return randomHex(16)
}

// QuoteNumber returns the human-readable quote number DEV-YYYYMMDD-XXXXXX for the
// given day. The suffix is 6 random uppercase hex characters; uniqueness is enforced
// by the store.
func QuoteNumber(at time.Time) string {
	return "DEV-" + at.UTC().Format("20060102") + "-" + strings.ToUpper(randomHex(3))
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
