package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fsanano/stockroom/internal/model"
	"fsanano/stockroom/internal/service"
)

const badQuantity = "Quantity must be a whole number, 0 or greater"

type itemForm struct {
	Name        string
	Description string
	Quantity    int
	raw         map[string]string
}

// parseItemForm reads the item fields. ok is false when quantity is not a
// non-negative integer.
func parseItemForm(r *http.Request) (form itemForm, ok bool) {
	form.Name = strings.TrimSpace(r.PostFormValue("name"))
	form.Description = r.PostFormValue("description")
	qty := strings.TrimSpace(r.PostFormValue("quantity"))
	form.raw = map[string]string{
		"name":        form.Name,
		"description": form.Description,
		"quantity":    qty,
	}

	n, err := strconv.Atoi(qty)
	if err != nil || n < 0 {
		return form, false
	}
	form.Quantity = n
	return form, true
}

func formFromItem(item *model.Item) map[string]string {
	return map[string]string{
		"name":        item.Name,
		"description": item.Description,
		"quantity":    strconv.Itoa(item.Quantity),
	}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListByOwner(r.Context(), caller(r).UserID)
	if err != nil {
		items = nil
	}
	h.render(w, r, http.StatusOK, "home.page.html", &pageData{Items: items})
}

func (h *Handler) AddItemForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "add_item.page.html", nil)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	form, ok := parseItemForm(r)
	if !ok {
		h.render(w, r, http.StatusUnprocessableEntity, "add_item.page.html", &pageData{FormError: badQuantity, Form: form.raw})
		return
	}

	_, err := h.items.Create(r.Context(), form.Name, form.Description, form.Quantity, caller(r).UserID)
	switch {
	case err == nil:
		h.addFlash(w, r, flashSuccess, "Item added successfully!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, service.ErrInvalidInput):
		h.render(w, r, http.StatusUnprocessableEntity, "add_item.page.html", &pageData{FormError: inputMessage(err), Form: form.raw})
	default:
		h.addFlash(w, r, flashDanger, "An error occurred while adding the item")
		http.Redirect(w, r, "/add_item", http.StatusSeeOther)
	}
}

func (h *Handler) EditItemForm(w http.ResponseWriter, r *http.Request) {
	item, err := h.guard.Get(r.Context(), caller(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.refuse(w, r, "You are not authorized to edit this item")
		return
	}
	h.render(w, r, http.StatusOK, "edit_item.page.html", &pageData{Item: item, Form: formFromItem(item)})
}

func (h *Handler) EditItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := caller(r).UserID
	itemID := chi.URLParam(r, "id")

	item, err := h.guard.Get(ctx, callerID, itemID)
	if err != nil {
		h.refuse(w, r, "You are not authorized to edit this item")
		return
	}

	form, ok := parseItemForm(r)
	if !ok {
		h.render(w, r, http.StatusUnprocessableEntity, "edit_item.page.html", &pageData{Item: item, FormError: badQuantity, Form: form.raw})
		return
	}

	err = h.guard.Update(ctx, callerID, itemID, form.Name, form.Description, form.Quantity)
	switch {
	case err == nil:
		h.addFlash(w, r, flashSuccess, "Item updated successfully!")
	case errors.Is(err, service.ErrNotAuthorized):
		h.addFlash(w, r, flashDanger, "You are not authorized to edit this item")
	case errors.Is(err, service.ErrInvalidInput):
		h.render(w, r, http.StatusUnprocessableEntity, "edit_item.page.html", &pageData{Item: item, FormError: inputMessage(err), Form: form.raw})
		return
	default:
		h.addFlash(w, r, flashDanger, "An error occurred while updating the item")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	err := h.guard.Delete(r.Context(), caller(r).UserID, chi.URLParam(r, "id"))
	switch {
	case err == nil:
		h.addFlash(w, r, flashSuccess, "Item deleted successfully!")
	case errors.Is(err, service.ErrNotAuthorized):
		h.addFlash(w, r, flashDanger, "You are not authorized to delete this item")
	default:
		h.addFlash(w, r, flashDanger, "An error occurred while deleting the item")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) SearchRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.PostFormValue("search_term")
	items, err := h.items.SearchByOwner(r.Context(), caller(r).UserID, term)
	if err != nil {
		items = nil
	}
	h.render(w, r, http.StatusOK, "search_results.page.html", &pageData{Items: items, SearchTerm: term})
}

func (h *Handler) refuse(w http.ResponseWriter, r *http.Request, message string) {
	h.addFlash(w, r, flashDanger, message)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
