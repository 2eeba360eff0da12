package core

import "encoding/base64"

// AdminCredentials is the single administrator principal. There is exactly
// one pair per process lifetime; changing it requires a restart, which is
// what invalidates every outstanding session (see ValidateSession).
type AdminCredentials struct {
	Username string
	Password string
}

// CredentialsFromConfig lifts the configured pair into an immutable value.
func CredentialsFromConfig(cfg Config) AdminCredentials {
	return AdminCredentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword}
}

// Fingerprint derives the change-detection hash embedded in session tokens.
// It is plain base64 of "username:password" — reversible and not a secret;
// its only job is byte-exact comparison against the value a token was
// issued with.
func (c AdminCredentials) Fingerprint() string {
	return base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
}

// Match reports whether the submitted pair equals the configured one.
// Comparison is exact and case sensitive on both fields.
func (c AdminCredentials) Match(username, password string) bool {
	return username == c.Username && password == c.Password
}
