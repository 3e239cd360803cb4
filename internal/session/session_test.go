package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-portal/internal/model"
)

type memRow struct {
	kind    string
	revoked bool
}

type memStore struct {
	mu      sync.Mutex
	rows    map[string]*memRow
	failGet bool
}

func newMemStore() *memStore { return &memStore{rows: map[string]*memRow{}} }

func (s *memStore) CreateSession(_ context.Context, id, _, kind string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id] = &memRow{kind: kind}
	return nil
}

func (s *memStore) SessionActive(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return "", false, errors.New("db down")
	}
	row, ok := s.rows[id]
	if !ok {
		return "", false, nil
	}
	return row.kind, !row.revoked, nil
}

func (s *memStore) RevokeSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.revoked = true
	}
	return nil
}

// carry copies the response cookies onto a fresh request, like a browser.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(c)
	}
	return req
}

func TestLoginThenSubject(t *testing.T) {
	m := NewManager(newMemStore(), "secret", time.Hour, false)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(context.Background(), rec, "a@x.com", model.KindDoctor))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	email, kind, err := m.Subject(carry(rec))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
	assert.Equal(t, model.KindDoctor, kind)
}

func TestSubjectKindMismatch(t *testing.T) {
	st := newMemStore()
	m := NewManager(st, "secret", time.Hour, false)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(context.Background(), rec, "a@x.com", model.KindDoctor))
	for _, row := range st.rows {
		row.kind = "patient"
	}

	email, kind, err := m.Subject(carry(rec))
	require.NoError(t, err)
	assert.Empty(t, email)
	assert.Equal(t, model.Kind(0), kind)
}

func TestSubjectWithoutSession(t *testing.T) {
	m := NewManager(newMemStore(), "secret", time.Hour, false)

	email, _, err := m.Subject(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Empty(t, email)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "garbage"})
	email, _, err = m.Subject(req)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestSubjectRejectsForeignSecret(t *testing.T) {
	st := newMemStore()
	other := NewManager(st, "other", time.Hour, false)
	rec := httptest.NewRecorder()
	require.NoError(t, other.Login(context.Background(), rec, "a@x.com", model.KindPatient))

	m := NewManager(st, "secret", time.Hour, false)
	email, _, err := m.Subject(carry(rec))
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestLogoutRevokes(t *testing.T) {
	m := NewManager(newMemStore(), "secret", time.Hour, true)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(context.Background(), rec, "a@x.com", model.KindPatient))
	req := carry(rec)

	out := httptest.NewRecorder()
	require.NoError(t, m.Logout(out, req))

	var cleared *http.Cookie
	for _, c := range out.Result().Cookies() {
		if c.Name == sessionCookie && c.MaxAge < 0 {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	// the clearing cookie carries the same attributes as the one it replaces
	assert.True(t, cleared.HttpOnly)
	assert.True(t, cleared.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cleared.SameSite)

	// a replayed cookie is dead after logout
	email, _, err := m.Subject(req)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestSubjectStoreError(t *testing.T) {
	st := newMemStore()
	m := NewManager(st, "secret", time.Hour, false)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(context.Background(), rec, "a@x.com", model.KindPatient))

	st.failGet = true
	_, _, err := m.Subject(carry(rec))
	assert.Error(t, err)
}

func TestFlashes(t *testing.T) {
	m := NewManager(newMemStore(), "secret", time.Hour, false)

	rec := httptest.NewRecorder()
	require.NoError(t, m.AddFlash(rec, httptest.NewRequest(http.MethodGet, "/", nil), Success("Account created!")))

	req := carry(rec)
	rec2 := httptest.NewRecorder()
	require.NoError(t, m.AddFlash(rec2, req, Error("second")))

	got := m.Flashes(httptest.NewRecorder(), carry(rec2))
	assert.Equal(t, []Flash{Success("Account created!"), Error("second")}, got)

	// popping clears the cookie
	out := httptest.NewRecorder()
	m.Flashes(out, carry(rec2))
	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, flashCookie, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestFlashesTampered(t *testing.T) {
	m := NewManager(newMemStore(), "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "forged.value.here"})
	assert.Empty(t, m.Flashes(httptest.NewRecorder(), req))
}
