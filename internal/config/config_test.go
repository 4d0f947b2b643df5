package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "SWAP_TEST_VAR_1", "redis://localhost:6379", "default", "redis://localhost:6379"},
		{"uses default when unset", "SWAP_TEST_VAR_2", "", "UTC", "UTC"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "SWAP_TEST_INT_1", "8", 3, 8},
		{"uses default for empty", "SWAP_TEST_INT_2", "", 3, 3},
		{"uses default for non-numeric", "SWAP_TEST_INT_3", "many", 3, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("SWAP_NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("SWAP_NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("SWAP_TEST_REQUIRED", "secret123")
	defer os.Unsetenv("SWAP_TEST_REQUIRED")

	result := mustGetEnv("SWAP_TEST_REQUIRED")
	if result != "secret123" {
		t.Errorf("Expected 'secret123', got %q", result)
	}
}
