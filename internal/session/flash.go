package session

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CategoryError   = "error"
	CategorySuccess = "success"
)

type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

func Error(msg string) Flash { return Flash{Category: CategoryError, Message: msg} }

func Success(msg string) Flash { return Flash{Category: CategorySuccess, Message: msg} }

type flashClaims struct {
	Flashes []Flash `json:"f"`
	jwt.RegisteredClaims
}

// AddFlash queues f for the next rendered page, keeping any flashes still
// pending from earlier requests. Use it before redirecting.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, f Flash) error {
	pending := append(m.pending(r), f)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, flashClaims{Flashes: pending}).
		SignedString([]byte(m.secret))
	if err != nil {
		return fmt.Errorf("sign flash: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Flashes pops the pending flashes, clearing the cookie when there were any.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	pending := m.pending(r)
	if _, err := r.Cookie(flashCookie); err == nil {
		m.clearCookie(w, flashCookie)
	}
	return pending
}

func (m *Manager) pending(r *http.Request) []Flash {
	ck, err := r.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	var c flashClaims
	_, err = jwt.ParseWithClaims(ck.Value, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return nil
	}
	return c.Flashes
}
