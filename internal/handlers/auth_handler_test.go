package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reservalocales/api/internal/auth"
	"github.com/reservalocales/api/internal/httpx"
	"github.com/reservalocales/api/internal/model"
)

const testSecret = "test-secret"

type fakeUserStore struct {
	byEmail map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user model.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return model.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return model.User{}, pgx.ErrNoRows
}

func postJSON(h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
	return rec
}

func TestRegister(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(store, testLogger, testSecret, 15*time.Minute)

	rec := postJSON(h.Register, "/api/auth/register",
		`{"email":"ana@example.com","password":"s3creta","full_name":"Ana Ruiz"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var got tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want bearer", got.TokenType)
	}
	claims, err := auth.ParseAndVerifyHS256(got.AccessToken, testSecret)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Email != "ana@example.com" || claims.Role != model.RoleUser {
		t.Fatalf("claims = %+v, want ana@example.com with role user", claims)
	}

	stored := store.byEmail["ana@example.com"]
	if stored.PasswordHash == "s3creta" || stored.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(store, testLogger, testSecret, 15*time.Minute)

	body := `{"email":"ana@example.com","password":"s3creta","full_name":"Ana Ruiz"}`
	if rec := postJSON(h.Register, "/api/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	if rec := postJSON(h.Register, "/api/auth/register", body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	h := NewAuthHandler(newFakeUserStore(), testLogger, testSecret, 15*time.Minute)

	rec := postJSON(h.Register, "/api/auth/register", `{"email":"ana@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(store, testLogger, testSecret, 15*time.Minute)
	postJSON(h.Register, "/api/auth/register",
		`{"email":"ana@example.com","password":"s3creta","full_name":"Ana Ruiz"}`)

	rec := postJSON(h.Login, "/api/auth/login", `{"email":"ana@example.com","password":"s3creta"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	rec = postJSON(h.Login, "/api/auth/login", `{"email":"ana@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = postJSON(h.Login, "/api/auth/login", `{"email":"nobody@example.com","password":"s3creta"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	store := newFakeUserStore()
	hash, err := hashPassword("s3creta")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.byEmail["ana@example.com"] = model.User{
		ID:           testUserID,
		Email:        "ana@example.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
		Active:       false,
	}
	h := NewAuthHandler(store, testLogger, testSecret, 15*time.Minute)

	rec := postJSON(h.Login, "/api/auth/login", `{"email":"ana@example.com","password":"s3creta"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMe(t *testing.T) {
	store := newFakeUserStore()
	store.byEmail["ana@example.com"] = model.User{
		ID:       testUserID,
		Email:    "ana@example.com",
		FullName: "Ana Ruiz",
		Role:     model.RoleUser,
		Active:   true,
	}
	h := NewAuthHandler(store, testLogger, testSecret, 15*time.Minute)

	r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	r = r.WithContext(httpx.ContextWithClaims(r.Context(),
		&auth.Claims{Sub: testUserID, Email: "ana@example.com", Role: model.RoleUser}))
	rec := httptest.NewRecorder()
	h.Me(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["full_name"] != "Ana Ruiz" || got["user_id"] != testUserID {
		t.Fatalf("profile = %v", got)
	}
}
