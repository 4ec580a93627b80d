package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(keys))
	r.GET("/ping", func(c *gin.Context) {
		key, _ := c.Get("api_key")
		s, _ := key.(string)
		c.String(http.StatusOK, "pong:%s", s)
	})
	return r
}

func TestAuth_OpenAccessWhenNoKeys(t *testing.T) {
	r := authRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected open access, got %d", w.Code)
	}
}

func TestAuth_MissingKey(t *testing.T) {
	r := authRouter([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "Missing API key") {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestAuth_InvalidKey(t *testing.T) {
	r := authRouter([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-API-Key", "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w.Body.String() != "Invalid API key" {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestAuth_ValidHeaderKey(t *testing.T) {
	r := authRouter([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "pong:secret" {
		t.Errorf("api_key should be stored in the context, got %q", w.Body.String())
	}
}

func TestAuth_BearerToken(t *testing.T) {
	r := authRouter([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 via bearer token, got %d", w.Code)
	}
}
