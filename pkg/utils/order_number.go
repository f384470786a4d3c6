package utils

import (
	"crypto/rand"
	"time"
)

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber returns a human-friendly reference like CD-20260114-7KQ2MX.
func GenerateOrderNumber(now time.Time) string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = orderNumberAlphabet[int(b[i])%len(orderNumberAlphabet)]
	}
	return "CD-" + now.UTC().Format("20060102") + "-" + string(b)
}
