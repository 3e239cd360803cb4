// Package web renders the portal's server-side HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"hospital-portal/internal/model"
	"hospital-portal/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const layout = "templates/layout.html"

// Page is what every template receives.
type Page struct {
	Title    string
	Identity model.Identity
	Flashes  []session.Flash
	Data     any
}

type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, n := range names {
		if n == layout {
			continue
		}
		t, err := template.New(path.Base(n)).Funcs(funcs).ParseFS(templateFS, layout, n)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", n, err)
		}
		pages[path.Base(n)] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render executes page into a buffer first so a template error never leaves
// a half-written response.
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, p Page) error {
	t, ok := rd.pages[page]
	if !ok {
		return fmt.Errorf("no such page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
