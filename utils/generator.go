package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

const referenceSuffixLength = 6
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateBookingReference produces a human-readable booking id such as
// BK-1756710000-4F7K2Q. It is generated before the checkout session is
// opened so the provider metadata can carry it for reconciliation fallback.
func GenerateBookingReference() string {
	b := make([]byte, referenceSuffixLength)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// timestamp-only reference rather than panicking mid-request.
		return fmt.Sprintf("BK-%d", time.Now().UnixNano())
	}
	for i := range b {
		b[i] = letterBytes[int(b[i])%len(letterBytes)]
	}
	return fmt.Sprintf("BK-%d-%s", time.Now().Unix(), string(b))
}
