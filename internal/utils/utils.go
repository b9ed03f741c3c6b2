package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// ShortenString cuts s after l bytes and appends an ellipsis. A length of 0
// disables shortening.
func ShortenString(s string, l int) string {
	if len(s) > l && l != 0 {
		return fmt.Sprintf("%s...", s[:l])
	}
	return s
}

// RandomString appends a dash and 16 random hex characters to base.
func RandomString(base string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", base, hex.EncodeToString(b)), nil
}

// Slug lowercases s and replaces every run of characters other than letters
// and digits with a single dash.
func Slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
