// Package auth carries the caller identity: password hashing, signed session
// tokens and the cookie plus context plumbing around them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const SessionCookieName = "session_token"

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   string
	Username string
}

// Claims is the JWT payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"name"`
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

type SessionOption func(*Sessions)

// WithSecureCookie marks the session cookie Secure (HTTPS only).
func WithSecureCookie(secure bool) SessionOption {
	return func(s *Sessions) { s.secureCookie = secure }
}

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Sessions) { s.now = now }
}

func NewSessions(secret []byte, ttl time.Duration, opts ...SessionOption) *Sessions {
	s := &Sessions{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue signs a token for id that expires after the session TTL.
func (s *Sessions) Issue(id Identity) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:   id.UserID,
		Username: id.Username,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the identity it carries.
func (s *Sessions) Parse(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// SetCookie writes the session cookie for token.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the identity in the request's session cookie, if any.
func (s *Sessions) FromRequest(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Identity{}, ErrInvalidToken
	}
	return s.Parse(cookie.Value)
}

// Load attaches the session identity, when present and valid, to the
// request context. Requests without one pass through unchanged.
func (s *Sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.FromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireUser redirects to /login unless the request carries an identity.
// It must run after Load.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the caller identity stored by Load.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}
