package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns default when env not set",
			key:          "TEST_KEY_1",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
		{
			name:         "returns env value when set",
			key:          "TEST_KEY_2",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := GetEnvOrDefault(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("GetEnvOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJWTSecretManagement(t *testing.T) {
	originalSecret := GetJWTSecret()
	newSecret := []byte("test-secret")

	t.Run("set and restore JWT secret", func(t *testing.T) {
		restore := SetJWTSecret(newSecret)

		if string(GetJWTSecret()) != string(newSecret) {
			t.Errorf("JWT secret not updated, got %s, want %s",
				string(GetJWTSecret()), string(newSecret))
		}

		restore()

		if string(GetJWTSecret()) != string(originalSecret) {
			t.Errorf("JWT secret not restored, got %s, want %s",
				string(GetJWTSecret()), string(originalSecret))
		}
	})

	t.Run("concurrent access to JWT secret", func(t *testing.T) {
		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				GetJWTSecret()
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}
	})
}

func TestParseEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT_OK", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")
	t.Setenv("TEST_INT_NEG", "-3")
	t.Setenv("TEST_DUR_OK", "90s")
	t.Setenv("TEST_DUR_BAD", "soon")

	if got := parseEnvInt("TEST_INT_OK", 1); got != 42 {
		t.Errorf("parseEnvInt() = %d, want 42", got)
	}
	if got := parseEnvInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("parseEnvInt() with bad value = %d, want 7", got)
	}
	if got := parseEnvInt("TEST_INT_NEG", 7); got != 7 {
		t.Errorf("parseEnvInt() with negative value = %d, want 7", got)
	}
	if got := parseEnvInt("TEST_INT_UNSET", 9); got != 9 {
		t.Errorf("parseEnvInt() unset = %d, want 9", got)
	}
	if got := parseEnvDuration("TEST_DUR_OK", time.Second); got != 90*time.Second {
		t.Errorf("parseEnvDuration() = %v, want 90s", got)
	}
	if got := parseEnvDuration("TEST_DUR_BAD", time.Second); got != time.Second {
		t.Errorf("parseEnvDuration() with bad value = %v, want 1s", got)
	}
}
