package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reservalocales/api/internal/auth"
)

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ClaimsFromContext(r.Context()) == nil {
			t.Fatal("expected claims on context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestWithAuth_RejectsMissingToken(t *testing.T) {
	h := Chain(okHandler(t), WithAuth("secret"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWithAuth_AcceptsValidToken(t *testing.T) {
	token, err := auth.SignHS256(auth.Claims{
		Sub:  "user-1",
		Role: "user",
		Exp:  time.Now().Add(time.Minute).Unix(),
	}, "secret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	h := Chain(okHandler(t), WithAuth("secret"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestWithRole_RejectsNonAdmin(t *testing.T) {
	token, err := auth.SignHS256(auth.Claims{
		Sub:  "user-1",
		Role: "user",
		Exp:  time.Now().Add(time.Minute).Unix(),
	}, "secret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	h := Chain(okHandler(t), WithAuth("secret"), WithRole("admin"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
