// Package seed turns calendar days into stable rotation seeds.
package seed

import (
	"fmt"
	"time"
	"unicode/utf16"
)

// Layout is the format of a daily seed string.
const Layout = "2006-01-02"

// Clock supplies the current time. The rotation engine never reads the
// system clock directly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host's local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Used for --date overrides and tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// DailySeedString formats the calendar day of now, in now's location, as YYYY-MM-DD.
func DailySeedString(now time.Time) string {
	return now.Format(Layout)
}

// Today is DailySeedString for the clock's current instant.
func Today(c Clock) string {
	return DailySeedString(c.Now())
}

// Parse reads a YYYY-MM-DD seed as midnight in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date seed %q: %w", s, err)
	}
	return t, nil
}

// OffsetSeedString returns the seed string days calendar days away from s.
// Negative days move backwards.
func OffsetSeedString(s string, days int) (string, error) {
	// UTC avoids DST gaps; only the calendar date matters here.
	t, err := Parse(s, time.UTC)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(Layout), nil
}

// HashToInt is a 31-multiplier rolling hash over the UTF-16 code units of s,
// computed in wrapping signed 32-bit arithmetic and returned as its absolute value.
func HashToInt(s string) uint32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	if h < 0 {
		// -MinInt32 overflows int32 but fits uint32.
		return uint32(-int64(h))
	}
	return uint32(h)
}

// Derive hashes a seed string together with a discriminator such as "-highlights-frontend".
func Derive(s, discriminator string) uint32 {
	return HashToInt(s + discriminator)
}
