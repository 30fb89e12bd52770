package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"

	"fsanano/stockroom/internal/auth"
	"fsanano/stockroom/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/base.layout.html"

// pageData is the value every page template is executed with.
type pageData struct {
	Title       string
	CurrentUser *auth.Identity
	Flashes     []Flash
	FormError   string
	Form        map[string]string

	Items      []model.Item
	Item       *model.Item
	Profile    *model.User
	SearchTerm string
}

var functions = template.FuncMap{
	"formatDate": func(v any) string {
		var t time.Time
		switch tv := v.(type) {
		case time.Time:
			t = tv
		case *time.Time:
			if tv == nil {
				return ""
			}
			t = *tv
		}
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02 Jan 2006, 15:04")
	},
}

// parsePages builds one template set per page, each joined with the layout.
func parsePages() (map[string]*template.Template, error) {
	files, err := fs.Glob(templateFS, "templates/*.page.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := path.Base(file)
		ts, err := template.New(name).Funcs(functions).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = ts
	}
	return pages, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	ts, ok := h.pages[page]
	if !ok {
		h.serverError(w, r, fmt.Errorf("template %q does not exist", page))
		return
	}

	if data == nil {
		data = &pageData{}
	}
	if id, ok := auth.FromContext(r.Context()); ok {
		data.CurrentUser = &id
	}
	data.Flashes = append(h.popFlashes(w, r), data.Flashes...)

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
