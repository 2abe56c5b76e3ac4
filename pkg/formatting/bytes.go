// Package formatting renders and parses human-readable values: byte
// sizes for archive limits and log output.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

type byteUnit struct {
	suffix string
	factor float64
}

// Base-1024 units. Export archives and size limits live well below the
// top of this table; anything larger formats as PB.
var byteUnits = []byteUnit{
	{"B", 1},
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"GB", 1 << 30},
	{"TB", 1 << 40},
	{"PB", 1 << 50},
}

// FormatBytes renders a byte count with the largest unit that keeps the
// value at or above one. Precision below zero is treated as zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}
	if precision < 0 {
		precision = 0
	}

	f := float64(n)
	unit := byteUnits[0]
	for _, u := range byteUnits[1:] {
		if f < u.factor {
			break
		}
		unit = u
	}

	return strconv.FormatFloat(f/unit.factor, 'f', precision, 64) + " " + unit.suffix
}

// ParseBytes converts a size string such as "250MB" or "1.5 GB" to a
// byte count. The unit is case-insensitive and optional; a bare number
// means bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	cut := len(s)
	for cut > 0 {
		c := s[cut-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		cut--
	}

	number := strings.TrimSpace(s[:cut])
	suffix := strings.ToUpper(strings.TrimSpace(s[cut:]))

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	if suffix == "" {
		return int64(value), nil
	}

	for _, u := range byteUnits {
		if u.suffix == suffix {
			return int64(value * u.factor), nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit %q", suffix)
}
