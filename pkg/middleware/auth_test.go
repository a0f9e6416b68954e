package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(userID))
	})
}

func TestAuthenticatorBearerToken(t *testing.T) {
	auth := NewAuthenticator("test-secret", false)
	token, err := auth.Sign("alice", time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	auth.Middleware(echoUser()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "alice" {
		t.Errorf("user = %q, want alice", rec.Body.String())
	}
}

func TestAuthenticatorRejects(t *testing.T) {
	auth := NewAuthenticator("test-secret", false)
	other := NewAuthenticator("other-secret", false)
	foreign, _ := other.Sign("mallory", time.Hour)
	expired, _ := auth.Sign("alice", -time.Minute)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + foreign},
		{"expired", "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			auth.Middleware(echoUser()).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestAuthenticatorDevHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DevUserHeader, "bob")

	rec := httptest.NewRecorder()
	NewAuthenticator("", true).Middleware(echoUser()).ServeHTTP(rec, req)
	if rec.Body.String() != "bob" {
		t.Errorf("dev header: user = %q, want bob", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewAuthenticator("secret", false).Middleware(echoUser()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("dev header disabled: status = %d, want 401", rec.Code)
	}
}

func TestValidateEmptyToken(t *testing.T) {
	if _, err := NewAuthenticator("s", false).Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/expenses", nil))

	out := buf.String()
	for _, want := range []string{`"status":201`, `"method":"POST"`, `"route":"/api/v1/expenses"`} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("log line %q missing %s", out, want)
		}
	}
}
