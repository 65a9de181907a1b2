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

	"github.com/reservalocales/api/internal/model"
)

type fakeAdminStore struct {
	pending []model.Reservation
	byID    map[string]model.Reservation
}

func (f *fakeAdminStore) ListPending(_ context.Context, localeID string) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, res := range f.pending {
		if localeID == "" || res.LocaleID == localeID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *fakeAdminStore) UpdateStatusAndPriority(_ context.Context, id string, status model.ReservationStatus, priority int) (model.Reservation, error) {
	res, ok := f.byID[id]
	if !ok {
		return model.Reservation{}, pgx.ErrNoRows
	}
	res.Status = status
	res.Priority = priority
	f.byID[id] = res
	return res, nil
}

func adminMux(h *AdminHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/conflicts", h.Conflicts)
	mux.HandleFunc("PATCH /api/admin/resolve/{id}", h.Resolve)
	return mux
}

func pendingAt(id string, startHour, endHour int) model.Reservation {
	return model.Reservation{
		ID:       id,
		LocaleID: testLocaleID,
		StartDT:  time.Date(2026, 9, 1, startHour, 0, 0, 0, time.UTC),
		EndDT:    time.Date(2026, 9, 1, endHour, 0, 0, 0, time.UTC),
		Status:   model.StatusPending,
		Priority: model.DefaultPriority,
	}
}

func TestConflicts(t *testing.T) {
	store := &fakeAdminStore{pending: []model.Reservation{
		pendingAt("a", 10, 12),
		pendingAt("b", 11, 13),
		pendingAt("c", 14, 15),
	}}
	h := NewAdminHandler(store, testLogger)

	rec := httptest.NewRecorder()
	adminMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/conflicts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got []reservationItem
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d conflicting reservations, want 2: %+v", len(got), got)
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("conflicts = [%s %s], want [a b]", got[0].ID, got[1].ID)
	}
}

func TestConflictsEmpty(t *testing.T) {
	h := NewAdminHandler(&fakeAdminStore{}, testLogger)

	rec := httptest.NewRecorder()
	adminMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/conflicts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("body = %q, want []", body)
	}
}

func TestConflictsBadLocaleFilter(t *testing.T) {
	h := NewAdminHandler(&fakeAdminStore{}, testLogger)

	rec := httptest.NewRecorder()
	adminMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/conflicts?locale_id=nope", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestResolve(t *testing.T) {
	store := &fakeAdminStore{byID: map[string]model.Reservation{
		testResID: pendingAt(testResID, 10, 12),
	}}
	h := NewAdminHandler(store, testLogger)

	body := `{"status":"approved","priority":1}`
	rec := httptest.NewRecorder()
	adminMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch,
		"/api/admin/resolve/"+testResID, strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got reservationItem
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "approved" || got.Priority != 1 {
		t.Fatalf("resolved to %s/%d, want approved/1", got.Status, got.Priority)
	}
}

func TestResolveDefaultsPriority(t *testing.T) {
	store := &fakeAdminStore{byID: map[string]model.Reservation{
		testResID: pendingAt(testResID, 10, 12),
	}}
	h := NewAdminHandler(store, testLogger)

	rec := httptest.NewRecorder()
	adminMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch,
		"/api/admin/resolve/"+testResID, strings.NewReader(`{"status":"rejected"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got reservationItem
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Priority != model.DefaultPriority {
		t.Fatalf("priority = %d, want %d", got.Priority, model.DefaultPriority)
	}
}

func TestResolveNotFound(t *testing.T) {
	h := NewAdminHandler(&fakeAdminStore{byID: map[string]model.Reservation{}}, testLogger)

	rec := httptest.NewRecorder()
	adminMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch,
		"/api/admin/resolve/"+testResID, strings.NewReader(`{"status":"approved"}`)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestResolveInvalidStatus(t *testing.T) {
	h := NewAdminHandler(&fakeAdminStore{}, testLogger)

	rec := httptest.NewRecorder()
	adminMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch,
		"/api/admin/resolve/"+testResID, strings.NewReader(`{"status":"maybe"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
