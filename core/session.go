package core

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const (
	sessionCookieName = "session"
	sessionMaxAge     = 24 * time.Hour
)

var (
	// ErrMalformedToken is returned when a cookie value does not decode to a payload.
	ErrMalformedToken = errors.New("malformed session token")
	// ErrSessionExpired is returned when a session is older than sessionMaxAge.
	ErrSessionExpired = errors.New("session expired")
	// ErrCredentialsChanged is returned when the admin credentials were rotated
	// after the token was issued.
	ErrCredentialsChanged = errors.New("credentials changed since session was issued")
)

// SessionPayload is the entire content of the session cookie. The server
// keeps no session state; every request carries this payload and it is
// re-validated on each decode.
//
// The token is base64(JSON), not signed or MACed. The envHash is itself a
// deterministic encoding of the credential pair, so anyone able to derive it
// could forge a session. This mirrors the original cookie format on purpose;
// see DESIGN.md before attempting to harden it.
type SessionPayload struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	LoginTime int64  `json:"loginTime"` // unix milliseconds at issue
	EnvHash   string `json:"envHash"`   // credential fingerprint at issue
}

// User is the authenticated principal attached to a request after
// validation. It is rebuilt from the payload on every request, never cached.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// EncodeSessionToken serializes a payload into the opaque cookie value.
func EncodeSessionToken(p SessionPayload) string {
	data, err := json.Marshal(p)
	if err != nil {
		// SessionPayload contains only strings and an int64; Marshal cannot fail.
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeSessionToken parses a cookie value back into a payload. Any
// malformed, truncated, or otherwise non-well-formed input yields
// ErrMalformedToken and never a partial payload.
func DecodeSessionToken(token string) (SessionPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return SessionPayload{}, ErrMalformedToken
	}
	var p SessionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return SessionPayload{}, ErrMalformedToken
	}
	return p, nil
}

// ValidateSession re-checks a decoded payload against live state: session
// age first, then the current credential fingerprint. The fingerprint check
// is the kill switch — rotating the configured credentials invalidates every
// outstanding token at once, with no revocation list.
func ValidateSession(p SessionPayload, creds AdminCredentials, now time.Time) (User, error) {
	if now.UnixMilli()-p.LoginTime > sessionMaxAge.Milliseconds() {
		return User{}, ErrSessionExpired
	}
	if p.EnvHash != creds.Fingerprint() {
		return User{}, ErrCredentialsChanged
	}
	return User{ID: p.UserID, Name: p.Username, Email: p.Email, Avatar: ""}, nil
}

// NewSessionCookie builds the Set-Cookie value carrying a freshly minted token.
func NewSessionCookie(token string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(sessionMaxAge),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearSessionCookie builds the epoch-expiry cookie that makes the client
// delete its session. Logout is purely advisory; there is no server-side
// state to clear.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
