// Package session keeps the logged-in identity in a signed cookie backed by
// a server-side session row, and carries one-shot flash messages between
// requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"hospital-portal/internal/auth"
	"hospital-portal/internal/model"
)

const (
	sessionCookie = "portal_session"
	flashCookie   = "portal_flash"
)

// Store is the persistence the manager needs for server-side sessions.
type Store interface {
	CreateSession(ctx context.Context, id, email, kind string, expiresAt time.Time) error
	SessionActive(ctx context.Context, id string) (kind string, active bool, err error)
	RevokeSession(ctx context.Context, id string) error
}

type Manager struct {
	store  Store
	secret string
	ttl    time.Duration
	secure bool
}

func NewManager(st Store, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: st, secret: secret, ttl: ttl, secure: secure}
}

// Login starts a session for the kind's account at email and sets the
// session cookie.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, email string, kind model.Kind) error {
	id := uuid.NewString()
	expires := time.Now().Add(m.ttl)
	if err := m.store.CreateSession(ctx, id, email, kind.String(), expires); err != nil {
		return err
	}
	tok, err := auth.MakeToken(id, email, kind.String(), m.secret, m.ttl)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    tok,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Subject returns the email and kind of the request's session, or "" when
// there is no valid, unrevoked session. A session whose token and row
// disagree on the kind is treated as absent. Only storage failures are
// returned as errors.
func (m *Manager) Subject(r *http.Request) (string, model.Kind, error) {
	c, err := m.claims(r)
	if err != nil {
		return "", 0, nil
	}
	kind, ok, err := m.store.SessionActive(r.Context(), c.SessionID())
	if err != nil {
		return "", 0, err
	}
	if !ok || kind != c.Kind {
		return "", 0, nil
	}
	return c.Email(), model.ParseKind(kind), nil
}

// Logout revokes the request's session (if any) and clears the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	m.clearCookie(w, sessionCookie)
	c, err := m.claims(r)
	if err != nil {
		return nil
	}
	return m.store.RevokeSession(r.Context(), c.SessionID())
}

func (m *Manager) claims(r *http.Request) (*auth.Claims, error) {
	ck, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, err
	}
	if ck.Value == "" {
		return nil, errors.New("empty session cookie")
	}
	return auth.ParseToken(ck.Value, m.secret)
}

func (m *Manager) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
