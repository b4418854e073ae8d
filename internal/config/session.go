package config

import "time"

var (
	// SessionCookieName is the name of the session cookie
	// Default to "parley_session" if not set in environment
	SessionCookieName = GetEnvOrDefault("SESSION_COOKIE_NAME", "parley_session")
)

// GetSessionCookieName returns the configured session cookie name
func GetSessionCookieName() string {
	return SessionCookieName
}

// SetSessionCookieName temporarily changes the session cookie name and returns a function to restore it
// This is primarily used for testing
func SetSessionCookieName(name string) func() {
	previous := SessionCookieName
	SessionCookieName = name

	return func() {
		SessionCookieName = previous
	}
}

// GetSessionLifetime bounds both the cookie and the stored flow state
func GetSessionLifetime() time.Duration {
	return parseEnvDuration("SESSION_LIFETIME", time.Hour)
}

// GetSessionCookieSecure controls the Secure attribute; disable only for plain-http development
func GetSessionCookieSecure() bool {
	return GetEnvOrDefault("SESSION_COOKIE_SECURE", "true") != "false"
}
