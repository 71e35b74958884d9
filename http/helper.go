package http

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Helper function to write integer to buffer without allocation
func writeIntToBuffer(n int, buf []byte) int {
	if n == 0 {
		buf[0] = '0'
		return 1
	}

	// Calculate digits needed
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	// Write digits backwards
	for i := digits - 1; i >= 0; i-- {
		buf[i] = '0' + byte(n%10)
		n /= 10
	}

	return digits
}

// DecodeLossy interprets b as UTF-8, substituting U+FFFD for invalid
// sequences. It never fails.
func DecodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	// The UTF-8 decoder replaces invalid bytes instead of failing
	decoded, _ := unicode.UTF8.NewDecoder().Bytes(b)
	return string(decoded)
}
