package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"fsanano/stockroom/internal/auth"
	"fsanano/stockroom/internal/logging"
	"fsanano/stockroom/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Users    *service.UserService
	Items    *service.ItemService
	Guard    *service.Guard
	Sessions *auth.Sessions
	Flashes  sessions.Store
	Store    Pinger
	Log      logging.Logger
}

type Handler struct {
	router   *chi.Mux
	users    *service.UserService
	items    *service.ItemService
	guard    *service.Guard
	sessions *auth.Sessions
	flashes  sessions.Store
	store    Pinger
	log      logging.Logger
	pages    map[string]*template.Template
}

func NewHandler(deps Deps) (*Handler, error) {
	if deps.Flashes == nil {
		return nil, errors.New("handler: flash store is required")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(deps.Log))
	router.Use(middleware.Recoverer)
	router.Use(compressor())
	router.Use(deps.Sessions.Load)

	h := &Handler{
		router:   router,
		users:    deps.Users,
		items:    deps.Items,
		guard:    deps.Guard,
		sessions: deps.Sessions,
		flashes:  deps.Flashes,
		store:    deps.Store,
		log:      deps.Log,
		pages:    pages,
	}

	h.registerRoutes()
	return h, nil
}

func (h *Handler) registerRoutes() {
	h.router.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)
	})

	h.router.Group(func(r chi.Router) {
		r.Use(noCache)
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.Login)
		r.Get("/register", h.RegisterForm)
		r.Post("/register", h.Register)
		r.Get("/logout", h.Logout)
	})

	h.router.Group(func(r chi.Router) {
		r.Use(noCache)
		r.Use(auth.RequireUser)

		r.Get("/", h.Home)
		r.Get("/add_item", h.AddItemForm)
		r.Post("/add_item", h.AddItem)
		r.Get("/edit_item/{id}", h.EditItemForm)
		r.Post("/edit_item/{id}", h.EditItem)
		r.Post("/delete_item/{id}", h.DeleteItem)
		r.Get("/search", h.SearchRedirect)
		r.Post("/search", h.Search)
		r.Get("/profile", h.Profile)
		r.Post("/profile", h.UpdateProfile)
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			h.log.Warn(r.Context(), "health check failed", "error", err)
			http.Error(w, "UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// caller returns the identity attached by the session middleware. Routes
// behind auth.RequireUser always have one.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}
