// internal/daily/daily.go
//
// Daily challenge helpers.
//   - DateKey: the UTC calendar day a result belongs to.
//   - Seed:    HMAC(salt, mode|date) folded to 64 bits, seeding the shuffle so
//              every student gets the same layout on the same day.
//   - Index:   the same HMAC reduced modulo n, picking the day's topic.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func sum(t time.Time, salt, scope string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(scope))
	h.Write([]byte{'|'})
	h.Write([]byte(DateKey(t)))
	s := h.Sum(nil)
	// first 8 bytes as uint64 for modulus distribution
	return binary.BigEndian.Uint64(s[:8])
}

// Seed returns the deterministic shuffle seed for scope (usually a mode) on
// the day containing t.
func Seed(t time.Time, salt, scope string) uint64 {
	return sum(t, salt, scope+"#seed")
}

// Index returns a deterministic index in [0, n) for scope on the day
// containing t. n <= 0 returns 0.
func Index(t time.Time, salt, scope string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(sum(t, salt, scope) % uint64(n))
}
