package auth

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	cookieName = "coaster_review_session"
	userIDKey  = "user_id"

	sessionMaxAge = 7 * 24 * 60 * 60
)

func init() {
	// flashes are kept as []interface{} in the cookie
	gob.Register([]any{})
}

// Manager reads and writes the session cookie. Only the user id is stored in
// it; the user is loaded again on every request.
type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret string, secure bool) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// session never fails: a cookie that does not decode yields a fresh session.
func (m *Manager) session(r *http.Request) *sessions.Session {
	s, err := m.store.Get(r, cookieName)
	if err != nil && s == nil {
		s = sessions.NewSession(m.store, cookieName)
		opts := *m.store.Options
		s.Options = &opts
	}
	return s
}

// UserID returns the user id stored in the cookie, if any.
func (m *Manager) UserID(r *http.Request) (uint, bool) {
	id, ok := m.session(r).Values[userIDKey].(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID uint) error {
	s := m.session(r)
	s.Values[userIDKey] = userID
	s.Options.MaxAge = sessionMaxAge
	return s.Save(r, w)
}

// ClearUser forgets the user but keeps pending flashes.
func (m *Manager) ClearUser(w http.ResponseWriter, r *http.Request) error {
	s := m.session(r)
	if _, ok := s.Values[userIDKey]; !ok {
		return nil
	}
	delete(s.Values, userIDKey)
	return s.Save(r, w)
}

// Logout expires the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	s := m.session(r)
	s.Values = map[any]any{}
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	s := m.session(r)
	s.AddFlash(message)
	return s.Save(r, w)
}

// Flashes returns and clears the pending flash messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	s := m.session(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages, s.Save(r, w)
}
