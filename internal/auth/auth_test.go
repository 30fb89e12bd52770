package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("", "hunter2"))
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "hunter2"))
}

func TestSessions_IssueAndParse(t *testing.T) {
	s := NewSessions([]byte("super-secret"), time.Hour)

	tok, err := s.Issue(Identity{UserID: "u1", Username: "alice"})
	require.NoError(t, err)

	id, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", Username: "alice"}, id)
}

func TestSessions_Expired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	old := NewSessions([]byte("k"), time.Hour, WithClock(func() time.Time { return issued }))

	tok, err := old.Issue(Identity{UserID: "u1"})
	require.NoError(t, err)

	_, err = NewSessions([]byte("k"), time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessions_Rejects(t *testing.T) {
	s := NewSessions([]byte("right"), time.Hour)

	wrongKey, err := NewSessions([]byte("wrong"), time.Hour).Issue(Identity{UserID: "u1"})
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"}).SignedString([]byte("right"))
	require.NoError(t, err)

	noUser, err := s.Issue(Identity{})
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong secret": wrongKey,
		"malformed":    "not.a.jwt",
		"no expiry":    noExpiry,
		"no user":      noUser,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Parse(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestSessions_CookieRoundTrip(t *testing.T) {
	s := NewSessions([]byte("k"), 24*time.Hour, WithSecureCookie(true))
	tok, err := s.Issue(Identity{UserID: "u1", Username: "alice"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.SetCookie(rec, tok)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 86400, c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	id, err := s.FromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)

	rec = httptest.NewRecorder()
	s.ClearCookie(rec)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestLoadAndRequireUser(t *testing.T) {
	s := NewSessions([]byte("k"), time.Hour)
	var seen Identity
	h := s.Load(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("anonymous is redirected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("garbage cookie is redirected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("valid session passes", func(t *testing.T) {
		tok, err := s.Issue(Identity{UserID: "u1", Username: "alice"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", seen.UserID)
	})
}
