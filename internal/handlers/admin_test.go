package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bensuskins/habit-hub/internal/middleware"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/services"
	"github.com/go-chi/chi/v5"
)

func newAdminRouter(t *testing.T) (*chi.Mux, *services.ProfileService) {
	t.Helper()
	profileService := newProfileService(t)
	auth := services.NewAdminAuth("test-secret", "admin", "s3cret")
	handler := NewAdminHandler(auth, profileService)

	router := chi.NewRouter()
	router.Post("/admin/access", handler.Access)
	router.Post("/admin/logout", handler.Logout)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(auth))
		r.Get("/admin/profiles", handler.Profiles)
		r.Put("/admin/profiles/{id}", handler.UpdateProfile)
		r.Delete("/admin/profiles/{id}", handler.DeleteProfile)
		r.Get("/admin/stats", handler.Stats)
	})
	return router, profileService
}

func adminLogin(t *testing.T, router http.Handler, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"user": {"admin"}, "password": {password}}
	request := httptest.NewRequest(http.MethodPost, "/admin/access", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func withCookies(request *http.Request, recorder *httptest.ResponseRecorder) *http.Request {
	for _, cookie := range recorder.Result().Cookies() {
		request.AddCookie(cookie)
	}
	return request
}

func TestAdminHandler_AccessRejectsBadPassword(t *testing.T) {
	router, _ := newAdminRouter(t)

	recorder := adminLogin(t, router, "wrong")
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", recorder.Code)
	}
	if len(recorder.Result().Cookies()) != 0 {
		t.Error("expected no session cookie on failed login")
	}
}

func TestAdminHandler_ProfilesRequireSession(t *testing.T) {
	router, _ := newAdminRouter(t)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/profiles", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", recorder.Code)
	}
}

func TestAdminHandler_ManageProfiles(t *testing.T) {
	router, profileService := newAdminRouter(t)
	profile, err := profileService.Register(t.Context(), services.Registration{Name: "Ana", Email: "ana@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("registering: %v", err)
	}

	login := adminLogin(t, router, "s3cret")
	if login.Code != http.StatusOK {
		t.Fatalf("expected 200 logging in, got %d", login.Code)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, withCookies(httptest.NewRequest(http.MethodGet, "/admin/profiles", nil), login))
	var profiles []models.Profile
	json.NewDecoder(recorder.Body).Decode(&profiles)
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}

	request := httptest.NewRequest(http.MethodPut, "/admin/profiles/"+profile.ID, strings.NewReader(`{"name":"Ana B"}`))
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, withCookies(request, login))
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200 updating, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, withCookies(httptest.NewRequest(http.MethodGet, "/admin/stats", nil), login))
	var stats models.AdminStats
	json.NewDecoder(recorder.Body).Decode(&stats)
	if stats.TotalProfiles != 1 {
		t.Errorf("expected 1 profile in stats, got %d", stats.TotalProfiles)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, withCookies(httptest.NewRequest(http.MethodDelete, "/admin/profiles/"+profile.ID, nil), login))
	if recorder.Code != http.StatusNoContent {
		t.Errorf("expected 204 deleting, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, withCookies(httptest.NewRequest(http.MethodDelete, "/admin/profiles/"+profile.ID, nil), login))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", recorder.Code)
	}
}
