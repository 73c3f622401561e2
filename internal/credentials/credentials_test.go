package credentials

import (
	"strings"
	"testing"
)

func TestGenerateUsernameFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		username, err := GenerateUsername()
		if err != nil {
			t.Fatalf("GenerateUsername() = %v", err)
		}

		parts := strings.Split(username, "-")
		if len(parts) != 2 {
			t.Fatalf("username %q, want adjective-noun", username)
		}
		if !contains(adjectives, parts[0]) {
			t.Errorf("adjective %q not in wordlist", parts[0])
		}
		if !contains(nouns, parts[1]) {
			t.Errorf("noun %q not in wordlist", parts[1])
		}
	}
}

func TestGeneratePassword(t *testing.T) {
	password, err := GeneratePassword(12)
	if err != nil {
		t.Fatalf("GeneratePassword() = %v", err)
	}
	if len(password) != 12 {
		t.Fatalf("len = %d, want 12", len(password))
	}
	for _, c := range password {
		if !strings.ContainsRune(passwordChars, c) {
			t.Errorf("character %q not in the allowed alphabet", c)
		}
	}
}

func TestGeneratePasswordDefaultLength(t *testing.T) {
	for _, length := range []int{0, -5} {
		password, err := GeneratePassword(length)
		if err != nil {
			t.Fatalf("GeneratePassword(%d) = %v", length, err)
		}
		if len(password) != 8 {
			t.Errorf("GeneratePassword(%d) len = %d, want 8", length, len(password))
		}
	}
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
