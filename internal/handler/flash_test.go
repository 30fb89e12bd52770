package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsanano/stockroom/internal/logging"
	"fsanano/stockroom/internal/service"
)

func flashHandler(key string) *Handler {
	return &Handler{flashes: NewFlashStore([]byte(key), false), log: logging.Discard()}
}

func TestFlash_AddAndPop(t *testing.T) {
	h := flashHandler("k1")

	rec := httptest.NewRecorder()
	h.addFlash(rec, httptest.NewRequest(http.MethodGet, "/profile", nil), flashDanger, "User not found")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, flashCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, flashMaxAge, cookies[0].MaxAge)

	// A second message on the next request is appended.
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.addFlash(rec, req, flashInfo, "You have been logged out")

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	rec = httptest.NewRecorder()
	got := h.popFlashes(rec, req)

	assert.Equal(t, []Flash{
		{Category: flashDanger, Message: "User not found"},
		{Category: flashInfo, Message: "You have been logged out"},
	}, got)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestFlash_SameRequest(t *testing.T) {
	h := flashHandler("k1")
	req := httptest.NewRequest(http.MethodPost, "/edit_item/1", nil)
	rec := httptest.NewRecorder()

	h.addFlash(rec, req, flashSuccess, "Item updated successfully!")
	assert.Equal(t, []Flash{{Category: flashSuccess, Message: "Item updated successfully!"}}, h.popFlashes(rec, req))
}

func TestFlash_RejectsUnsignedOrForeignCookies(t *testing.T) {
	h := flashHandler("k1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "!!!"})
	assert.Nil(t, h.popFlashes(httptest.NewRecorder(), req))

	rec := httptest.NewRecorder()
	flashHandler("other-key").addFlash(rec, httptest.NewRequest(http.MethodGet, "/", nil), flashSuccess, "forged")
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	assert.Nil(t, h.popFlashes(httptest.NewRecorder(), req))

	rec = httptest.NewRecorder()
	assert.Nil(t, h.popFlashes(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Empty(t, rec.Result().Cookies())
}

func TestInputMessage(t *testing.T) {
	err := fmt.Errorf("%w: quantity must not be negative", service.ErrInvalidInput)
	assert.Equal(t, "quantity must not be negative", inputMessage(err))
	assert.Equal(t, "boom", inputMessage(errors.New("boom")))
}

func TestParsePages(t *testing.T) {
	pages, err := parsePages()
	require.NoError(t, err)
	for _, name := range []string{
		"login.page.html", "register.page.html", "home.page.html", "add_item.page.html",
		"edit_item.page.html", "search_results.page.html", "profile.page.html",
	} {
		assert.Contains(t, pages, name)
	}
}
