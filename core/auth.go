package core

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned when the submitted pair is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService verifies administrator credentials and mints session payloads.
type AuthService struct {
	creds AdminCredentials
	now   func() time.Time
}

func NewAuthService(creds AdminCredentials) *AuthService {
	return &AuthService{creds: creds, now: time.Now}
}

// Login compares the submitted pair against the configured credentials.
// Which side mismatched is never distinguishable from the result, to avoid
// username enumeration. On success it returns a fresh payload carrying the
// current credential fingerprint.
func (s *AuthService) Login(username, password string) (SessionPayload, error) {
	if !s.creds.Match(username, password) {
		return SessionPayload{}, ErrInvalidCredentials
	}
	return SessionPayload{
		UserID:    "1",
		Username:  username,
		Email:     username + "@admin.local",
		LoginTime: s.now().UnixMilli(),
		EnvHash:   s.creds.Fingerprint(),
	}, nil
}
