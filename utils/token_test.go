package utils

import (
	"strings"
	"testing"
)

func TestGenerateToken(t *testing.T) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if len(token) != 12 {
			t.Fatalf("token %q has length %d, want 12", token, len(token))
		}
		for _, c := range token {
			if !strings.ContainsRune(charset, c) {
				t.Fatalf("token %q contains %q outside charset", token, c)
			}
		}
		if seen[token] {
			t.Fatalf("token %q generated twice", token)
		}
		seen[token] = true
	}
}

func TestGenerateRandomHex(t *testing.T) {
	key, err := GenerateRandomHex(16)
	if err != nil {
		t.Fatalf("GenerateRandomHex: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("key length %d, want 32 hex chars", len(key))
	}
	for _, c := range key {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("key %q contains non-hex char %q", key, c)
		}
	}
}
