package core

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func testCredentials() AdminCredentials {
	return AdminCredentials{Username: "neko", Password: "neko"}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	p := SessionPayload{
		UserID:    "1",
		Username:  "neko",
		Email:     "neko@admin.local",
		LoginTime: time.Now().UnixMilli(),
		EnvHash:   testCredentials().Fingerprint(),
	}

	decoded, err := DecodeSessionToken(EncodeSessionToken(p))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if decoded != p {
		t.Fatalf("round trip mismatch: got %+v want %+v", decoded, p)
	}
}

func TestDecodeSessionTokenMalformed(t *testing.T) {
	cases := map[string]string{
		"empty token":     "",
		"not base64":      "!!!not-base64!!!",
		"not json":        base64.StdEncoding.EncodeToString([]byte("not json")),
		"json array":      base64.StdEncoding.EncodeToString([]byte("[]")),
		"wrong types":     base64.StdEncoding.EncodeToString([]byte(`{"userId":5}`)),
		"truncated":       base64.StdEncoding.EncodeToString([]byte(`{"userId":"1","userna`)),
		"plain json blob": `{"userId":"1"}`,
	}
	for name, token := range cases {
		if _, err := DecodeSessionToken(token); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("%s: got %v, want ErrMalformedToken", name, err)
		}
	}
}

func TestValidateSessionExpiryBoundary(t *testing.T) {
	creds := testCredentials()
	now := time.Now()

	payload := func(issued time.Time) SessionPayload {
		return SessionPayload{
			UserID:    "1",
			Username:  creds.Username,
			Email:     creds.Username + "@admin.local",
			LoginTime: issued.UnixMilli(),
			EnvHash:   creds.Fingerprint(),
		}
	}

	// One millisecond past 24h is dead.
	if _, err := ValidateSession(payload(now.Add(-24*time.Hour-time.Millisecond)), creds, now); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// Exactly 24h old is still alive (only strictly older fails).
	if _, err := ValidateSession(payload(now.Add(-24*time.Hour)), creds, now); err != nil {
		t.Fatalf("24h-old session should validate, got %v", err)
	}

	if _, err := ValidateSession(payload(now.Add(-23*time.Hour-59*time.Minute)), creds, now); err != nil {
		t.Fatalf("23h59m-old session should validate, got %v", err)
	}
}

func TestValidateSessionCredentialRotation(t *testing.T) {
	now := time.Now()
	issued := AdminCredentials{Username: "user1", Password: "pass1"}
	p := SessionPayload{
		UserID:    "1",
		Username:  "user1",
		Email:     "user1@admin.local",
		LoginTime: now.UnixMilli(),
		EnvHash:   issued.Fingerprint(),
	}

	if _, err := ValidateSession(p, issued, now); err != nil {
		t.Fatalf("session should be valid before rotation, got %v", err)
	}

	rotations := []AdminCredentials{
		{Username: "user2", Password: "pass2"},
		{Username: "user2", Password: "pass1"}, // username only
		{Username: "user1", Password: "pass2"}, // password only
	}
	for _, creds := range rotations {
		if _, err := ValidateSession(p, creds, now); !errors.Is(err, ErrCredentialsChanged) {
			t.Errorf("creds %s/%s: got %v, want ErrCredentialsChanged", creds.Username, creds.Password, err)
		}
	}
}

func TestValidateSessionBuildsUserFromPayload(t *testing.T) {
	creds := testCredentials()
	now := time.Now()
	p := SessionPayload{
		UserID:    "1",
		Username:  "neko",
		Email:     "neko@admin.local",
		LoginTime: now.UnixMilli(),
		EnvHash:   creds.Fingerprint(),
	}

	user, err := ValidateSession(p, creds, now)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	want := User{ID: "1", Name: "neko", Email: "neko@admin.local", Avatar: ""}
	if user != want {
		t.Fatalf("got %+v want %+v", user, want)
	}
}

func TestNewSessionCookie(t *testing.T) {
	now := time.Now()
	cookie := NewSessionCookie("token-value", now)

	if cookie.Name != "session" || cookie.Value != "token-value" {
		t.Fatalf("unexpected name/value: %s=%s", cookie.Name, cookie.Value)
	}
	if cookie.Path != "/" || !cookie.HttpOnly || !cookie.Secure {
		t.Fatalf("unexpected attributes: %+v", cookie)
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("expected SameSite=Strict, got %v", cookie.SameSite)
	}
	if got, want := cookie.Expires, now.Add(24*time.Hour); !got.Equal(want) {
		t.Fatalf("expires %v, want %v", got, want)
	}

	s := cookie.String()
	for _, attr := range []string{"session=token-value", "Path=/", "HttpOnly", "Secure", "SameSite=Strict", "Expires="} {
		if !strings.Contains(s, attr) {
			t.Errorf("cookie %q missing %q", s, attr)
		}
	}
}

func TestClearSessionCookie(t *testing.T) {
	cookie := ClearSessionCookie()
	if cookie.Value != "" {
		t.Fatalf("clearing cookie must carry empty value, got %q", cookie.Value)
	}
	if !strings.Contains(cookie.String(), "Expires=Thu, 01 Jan 1970 00:00:00 GMT") {
		t.Fatalf("clearing cookie must expire at epoch, got %q", cookie.String())
	}
}
