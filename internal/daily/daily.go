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

// PathSeed returns a deterministic RNG seed for a date using
// HMAC(salt, YYYY-MM-DD), so every player gets the same daily path.
func PathSeed(date time.Time, salt string) int64 {
	dk := DateKey(date)
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dk))
	sum := h.Sum(nil)
	// take first 8 bytes for the seed
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
