package handler

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	flashCookieName = "flash"
	flashMaxAge     = 60
)

const (
	flashSuccess = "success"
	flashDanger  = "danger"
	flashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
	gob.Register([]interface{}{})
}

// NewFlashStore returns the signed cookie store that carries flash messages
// across a redirect.
func NewFlashStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(flashMaxAge)
	return store
}

// addFlash queues a message for the next page the client renders, keeping
// any message the request already carried.
func (h *Handler) addFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	// A tampered or expired cookie still yields a usable empty session.
	sess, _ := h.flashes.Get(r, flashCookieName)
	sess.AddFlash(Flash{Category: category, Message: message})
	if err := sess.Save(r, w); err != nil {
		h.log.Warn(r.Context(), "save flash failed", "error", err)
	}
}

// popFlashes returns the queued messages and clears the cookie.
func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, _ := h.flashes.Get(r, flashCookieName)
	queued := sess.Flashes()
	if len(queued) == 0 {
		return nil
	}

	flashes := make([]Flash, 0, len(queued))
	for _, v := range queued {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}

	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		h.log.Warn(r.Context(), "clear flash failed", "error", err)
	}
	return flashes
}
