package services

import (
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		pw      string
		wantErr bool
	}{
		{"valid", "Correct1horse", false},
		{"too short", "Ab1", true},
		{"exactly eight with digit", "abcdefg1", false},
		{"no digit", "abcdefgh", true},
		{"empty", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.pw)
			if (err != nil) != tc.wantErr {
				t.Errorf("validatePassword(%q) error = %v, wantErr %v", tc.pw, err, tc.wantErr)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := generateToken(32)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}

	b, err := generateToken(32)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}
	if a == b {
		t.Error("Expected distinct tokens")
	}
}

func TestEmailRegex(t *testing.T) {
	valid := []string{"a@b.co", "alice.smith+tag@example.org", "X_1@sub.domain.io"}
	for _, email := range valid {
		if !emailRegex.MatchString(email) {
			t.Errorf("Expected %q to be valid", email)
		}
	}

	invalid := []string{"", "plain", "@missing.local", "user@", "user@nodot"}
	for _, email := range invalid {
		if emailRegex.MatchString(email) {
			t.Errorf("Expected %q to be invalid", email)
		}
	}
}
