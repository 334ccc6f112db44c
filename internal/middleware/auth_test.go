package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bensuskins/habit-hub/internal/middleware"
	"github.com/bensuskins/habit-hub/internal/services"
)

func TestRequireAdmin(t *testing.T) {
	auth := services.NewAdminAuth("test-secret", "admin", "s3cret")

	var seenAdmin string
	protected := middleware.RequireAdmin(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAdmin = middleware.GetAdmin(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	protected.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/profiles", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without cookie, got %d", recorder.Code)
	}

	login := httptest.NewRecorder()
	if err := auth.SetSession(login, "admin"); err != nil {
		t.Fatalf("setting session: %v", err)
	}
	request := httptest.NewRequest(http.MethodGet, "/admin/profiles", nil)
	for _, cookie := range login.Result().Cookies() {
		request.AddCookie(cookie)
	}

	recorder = httptest.NewRecorder()
	protected.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200 with session, got %d", recorder.Code)
	}
	if seenAdmin != "admin" {
		t.Errorf("expected admin in context, got %q", seenAdmin)
	}
}
