package handler

import (
	"errors"
	"net/http"
	"strings"

	"fsanano/stockroom/internal/auth"
	"fsanano/stockroom/internal/repository"
	"fsanano/stockroom/internal/service"
)

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.page.html", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		h.render(w, r, http.StatusUnauthorized, "login.page.html", &pageData{
			Form:    map[string]string{"username": username},
			Flashes: []Flash{{Category: flashDanger, Message: "Invalid username or password"}},
		})
		return
	}

	token, err := h.sessions.Issue(auth.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.sessions.SetCookie(w, token)

	h.addFlash(w, r, flashSuccess, "Login successful!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.page.html", nil)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	_, err := h.users.Register(r.Context(), username, email, password)
	switch {
	case err == nil:
		h.addFlash(w, r, flashSuccess, "Registration successful! Please login.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, service.ErrUsernameTaken):
		h.addFlash(w, r, flashDanger, "Username already exists")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	case errors.Is(err, service.ErrEmailTaken):
		h.addFlash(w, r, flashDanger, "Email already registered")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	case errors.Is(err, service.ErrInvalidInput):
		h.render(w, r, http.StatusUnprocessableEntity, "register.page.html", &pageData{
			FormError: inputMessage(err),
			Form:      map[string]string{"username": username, "email": email},
		})
	default:
		h.addFlash(w, r, flashDanger, "An error occurred during registration")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	h.addFlash(w, r, flashInfo, "You have been logged out")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), caller(r).UserID)
	if err != nil {
		h.addFlash(w, r, flashDanger, "User not found")
		http.Redirect(w, r, "/logout", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "profile.page.html", &pageData{Profile: user})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := caller(r).UserID

	user, err := h.users.FindByID(ctx, id)
	if err != nil {
		h.addFlash(w, r, flashDanger, "User not found")
		http.Redirect(w, r, "/logout", http.StatusSeeOther)
		return
	}

	data := &pageData{Profile: user}
	status := http.StatusOK

	err = h.users.ChangeEmail(ctx, id, r.PostFormValue("email"))
	switch {
	case err == nil:
		if fresh, err := h.users.FindByID(ctx, id); err == nil {
			data.Profile = fresh
		}
		data.Flashes = []Flash{{Category: flashSuccess, Message: "Profile updated successfully!"}}
	case errors.Is(err, service.ErrEmailTaken):
		status = http.StatusConflict
		data.Flashes = []Flash{{Category: flashDanger, Message: "Email already registered"}}
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
		data.FormError = inputMessage(err)
	case errors.Is(err, repository.ErrNotFound):
		h.addFlash(w, r, flashDanger, "User not found")
		http.Redirect(w, r, "/logout", http.StatusSeeOther)
		return
	default:
		data.Flashes = []Flash{{Category: flashDanger, Message: "An error occurred while updating your profile"}}
	}

	h.render(w, r, status, "profile.page.html", data)
}

// inputMessage strips the sentinel prefix from a validation error.
func inputMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, service.ErrInvalidInput.Error()+": "); i >= 0 {
		return msg[i+len(service.ErrInvalidInput.Error())+2:]
	}
	return msg
}
