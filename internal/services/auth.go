package services

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const sessionCookieName = "admin_session"

const sessionMaxAge = 12 * time.Hour

var ErrAdminDisabled = errors.New("admin access is not configured")

type SessionData struct {
	Admin    string    `json:"admin"`
	IssuedAt time.Time `json:"issued_at"`
}

// AdminAuth checks the configured admin credentials and keeps the admin
// signed in with a signed cookie.
type AdminAuth struct {
	secureCookie *securecookie.SecureCookie
	user         string
	password     string
}

func NewAdminAuth(sessionSecret, user, password string) *AdminAuth {
	if password == "" {
		slog.Warn("ADMIN_PASSWORD not set, admin routes are disabled")
	}
	secureCookie := securecookie.New([]byte(sessionSecret), nil)
	secureCookie.MaxAge(int(sessionMaxAge.Seconds()))
	return &AdminAuth{
		secureCookie: secureCookie,
		user:         user,
		password:     password,
	}
}

func (service *AdminAuth) Enabled() bool {
	return service.password != ""
}

func (service *AdminAuth) CheckCredentials(user, password string) error {
	if !service.Enabled() {
		return ErrAdminDisabled
	}
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(service.user)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(service.password)) == 1
	if !userMatch || !passwordMatch {
		return ErrInvalidCredentials
	}
	return nil
}

func (service *AdminAuth) SetSession(w http.ResponseWriter, admin string) error {
	data := SessionData{Admin: admin, IssuedAt: time.Now()}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode(sessionCookieName, string(encoded))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
	return nil
}

func (service *AdminAuth) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode(sessionCookieName, cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}
	if session.Admin != service.user {
		return SessionData{}, errors.New("session belongs to another admin")
	}
	return session, nil
}

func (service *AdminAuth) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
