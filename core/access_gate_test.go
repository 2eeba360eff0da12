package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIsProtectedPath(t *testing.T) {
	cases := []struct {
		path      string
		protected bool
	}{
		{"/login", false},
		{"/login/", false},
		{"/api/auth", false},
		{"/api/auth/session", false},
		{"/api/login", false},
		{"/api/logout", false},
		{"/api/test", false},
		{"/", true},
		{"/neko", true},
		{"/api/works", true},
		{"/api/events", true},
		{"/api/uploads", true},
		{"/admin/works", true},
	}
	for _, tc := range cases {
		if got := IsProtectedPath(tc.path); got != tc.protected {
			t.Errorf("IsProtectedPath(%q) = %v, want %v", tc.path, got, tc.protected)
		}
	}
}

// gateRouter wires AuthMiddleware around one public and one protected route.
func gateRouter(creds AdminCredentials) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(creds))
	r.GET("/login", func(c *gin.Context) {
		c.String(http.StatusOK, "login page")
	})
	r.GET("/neko", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no user attached")
			return
		}
		c.String(http.StatusOK, user.Name)
	})
	return r
}

func validSessionCookie(t *testing.T, creds AdminCredentials) *http.Cookie {
	t.Helper()
	payload, err := NewAuthService(creds).Login(creds.Username, creds.Password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return NewSessionCookie(EncodeSessionToken(payload), time.Now())
}

func TestGateBypassesPublicPaths(t *testing.T) {
	r := gateRouter(testCredentials())

	// No cookie at all.
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("public path without cookie: got %d", w.Code)
	}

	// Garbage cookie must not matter either; public paths skip inspection.
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("public path with garbage cookie: got %d", w.Code)
	}
}

func TestGateRedirectsProtectedPaths(t *testing.T) {
	creds := testCredentials()
	r := gateRouter(creds)

	expired := SessionPayload{
		UserID:    "1",
		Username:  creds.Username,
		Email:     creds.Username + "@admin.local",
		LoginTime: time.Now().Add(-25 * time.Hour).UnixMilli(),
		EnvHash:   creds.Fingerprint(),
	}
	rotated := SessionPayload{
		UserID:    "1",
		Username:  "olduser",
		Email:     "olduser@admin.local",
		LoginTime: time.Now().UnixMilli(),
		EnvHash:   AdminCredentials{Username: "olduser", Password: "oldpass"}.Fingerprint(),
	}

	cases := map[string]*http.Cookie{
		"no cookie":           nil,
		"malformed token":     {Name: "session", Value: "not-a-token"},
		"expired session":     {Name: "session", Value: EncodeSessionToken(expired)},
		"rotated credentials": {Name: "session", Value: EncodeSessionToken(rotated)},
		"empty cookie value":  {Name: "session", Value: ""},
		"wrong cookie name":   {Name: "other", Value: EncodeSessionToken(expired)},
	}

	for name, cookie := range cases {
		req := httptest.NewRequest(http.MethodGet, "/neko", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusFound {
			t.Errorf("%s: got status %d, want 302", name, w.Code)
			continue
		}
		if loc := w.Header().Get("Location"); loc != "/login?redirected=true" {
			t.Errorf("%s: redirect to %q, want /login?redirected=true", name, loc)
		}
		if w.Body.String() == "no user attached" || w.Body.String() == creds.Username {
			t.Errorf("%s: downstream handler ran", name)
		}
	}
}

func TestGateAttachesUserOnValidSession(t *testing.T) {
	creds := testCredentials()
	r := gateRouter(creds)

	req := httptest.NewRequest(http.MethodGet, "/neko", nil)
	req.AddCookie(validSessionCookie(t, creds))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", w.Code)
	}
	if w.Body.String() != creds.Username {
		t.Fatalf("handler saw %q, want %q", w.Body.String(), creds.Username)
	}
}

func TestResolveSessionErrorsStayDistinct(t *testing.T) {
	creds := testCredentials()

	req := httptest.NewRequest(http.MethodGet, "/neko", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "%%%"})
	if _, err := ResolveSession(req, creds, time.Now()); err != ErrMalformedToken {
		t.Fatalf("malformed: got %v", err)
	}

	expired := SessionPayload{LoginTime: time.Now().Add(-25 * time.Hour).UnixMilli(), EnvHash: creds.Fingerprint()}
	req = httptest.NewRequest(http.MethodGet, "/neko", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: EncodeSessionToken(expired)})
	if _, err := ResolveSession(req, creds, time.Now()); err != ErrSessionExpired {
		t.Fatalf("expired: got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/neko", nil)
	if _, err := ResolveSession(req, creds, time.Now()); err != http.ErrNoCookie {
		t.Fatalf("absent: got %v", err)
	}
}
