package utils

import (
	"testing"
)

func TestShortenString(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"hello world", 5, "hello..."},
		{"hello", 10, "hello"},
		{"", 3, ""},
		{"abcdef", 0, "abcdef"},
		{"abcdef", 6, "abcdef"},
		{"abcdef", 3, "abc..."},
	}

	for _, tt := range tests {
		result := ShortenString(tt.input, tt.length)
		if result != tt.expected {
			t.Errorf("ShortenString(%q, %d) = %q; want %q", tt.input, tt.length, result, tt.expected)
		}
	}
}

func TestRandomString(t *testing.T) {
	base := "linkedin"
	result1, err1 := RandomString(base)
	if err1 != nil {
		t.Fatalf("RandomString(%q) returned error: %v", base, err1)
	}
	if got, want := result1[:len(base)], base; got != want {
		t.Errorf("RandomString(%q) prefix = %q; want %q", base, got, want)
	}
	if result1[len(base)] != '-' {
		t.Errorf("RandomString(%q) missing '-' after base: %q", base, result1)
	}
	if suffix := result1[len(base)+1:]; len(suffix) != 16 {
		t.Errorf("RandomString(%q) suffix length = %d; want 16", base, len(suffix))
	}
	result2, err2 := RandomString(base)
	if err2 != nil {
		t.Fatalf("RandomString(%q) returned error: %v", base, err2)
	}
	if result1 == result2 {
		t.Errorf("RandomString(%q) produced duplicate results: %q", base, result1)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Backend Engineer", "backend-engineer"},
		{"  R&D -- Labs!  ", "r-d-labs"},
		{"Go/Rust (Remote)", "go-rust-remote"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.input); got != tt.expected {
			t.Errorf("Slug(%q) = %q; want %q", tt.input, got, tt.expected)
		}
	}
}
