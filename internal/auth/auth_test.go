package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testSecret = "s3cret-admin"

func newTestAuth(t *testing.T) *Authenticator {
	t.Helper()
	a, err := New(testSecret, "signing-key", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestIssueAndVerifyToken(t *testing.T) {
	a := newTestAuth(t)

	if _, err := a.IssueToken("wrong"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("IssueToken(wrong) err = %v, want ErrInvalidCreds", err)
	}

	tok, err := a.IssueToken(testSecret)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := a.VerifyToken(tok.Token); err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	other, err := New(testSecret, "another-key", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := other.VerifyToken(tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token verified under a different key: %v", err)
	}

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := a.VerifyToken(tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token err = %v, want ErrInvalidToken", err)
	}
}

func TestEphemeralSecretRejectsEmpty(t *testing.T) {
	a, err := New("", "", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.ttl != 24*time.Hour {
		t.Fatalf("ttl = %v, want 24h", a.ttl)
	}
	if err := a.CheckSecret(""); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("empty secret accepted: %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	a := newTestAuth(t)
	tok, err := a.IssueToken(testSecret)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"admin header", map[string]string{HeaderAdminSecret: testSecret}, http.StatusOK},
		{"wrong admin header", map[string]string{HeaderAdminSecret: "nope"}, http.StatusUnauthorized},
		{"bearer secret", map[string]string{"Authorization": "Bearer " + testSecret}, http.StatusOK},
		{"bearer token", map[string]string{"Authorization": "Bearer " + tok.Token}, http.StatusOK},
		{"bearer garbage token", map[string]string{"Authorization": "Bearer a.b.c"}, http.StatusUnauthorized},
	}

	e := echo.New()
	h := a.Middleware(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			if err := h(e.NewContext(req, rec)); err != nil {
				t.Fatalf("handler: %v", err)
			}
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
