package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKey(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2026, 8, 25, 23, 30, 0, 0, loc)
	assert.Equal(t, "2026-08-26", DateKey(ts))
}

func TestPathSeedDeterministic(t *testing.T) {
	day := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	later := time.Date(2026, 8, 26, 22, 15, 0, 0, time.UTC)

	// Same date and salt, any time of day: same seed.
	assert.Equal(t, PathSeed(day, "salt"), PathSeed(later, "salt"))

	// Different salt or date: different seed.
	assert.NotEqual(t, PathSeed(day, "salt"), PathSeed(day, "other"))
	next := day.AddDate(0, 0, 1)
	assert.NotEqual(t, PathSeed(day, "salt"), PathSeed(next, "salt"))
}
