package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bensuskins/habit-hub/internal/config"
	"github.com/bensuskins/habit-hub/internal/server"
	"github.com/bensuskins/habit-hub/internal/testutil"
)

func TestServer_Routes(t *testing.T) {
	database := testutil.NewTestDatabase(t)
	srv := server.New(database, config.Config{SessionSecret: "test-secret", AdminUser: "admin", AdminPassword: "pw"})
	handler := srv.Handler()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "register", method: http.MethodPost, path: "/profiles", body: `{"name":"A","email":"a@example.com","password":"pw"}`, expectedStatus: http.StatusCreated},
		{name: "unknown profile", method: http.MethodGet, path: "/profiles/nope", expectedStatus: http.StatusNotFound},
		{name: "list requires admin", method: http.MethodGet, path: "/profiles", expectedStatus: http.StatusUnauthorized},
		{name: "stats require admin", method: http.MethodGet, path: "/admin/stats", expectedStatus: http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var request *http.Request
			if test.body != "" {
				request = httptest.NewRequest(test.method, test.path, strings.NewReader(test.body))
			} else {
				request = httptest.NewRequest(test.method, test.path, nil)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
			if recorder.Code != test.expectedStatus {
				t.Errorf("expected %d, got %d", test.expectedStatus, recorder.Code)
			}
		})
	}
}
