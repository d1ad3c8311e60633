package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/atinyakov/gophauth/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index", "register", "login", "profile"}

// PageData is passed to every template.
type PageData struct {
	// User is the logged-in user, nil when anonymous.
	User *models.User
	// Message is the single notification shown above the page content.
	Message string
}

// Views renders the embedded HTML pages.
type Views struct {
	templates map[string]*template.Template
}

// NewViews parses the embedded templates.
func NewViews() (*Views, error) {
	v := &Views{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		v.templates[page] = t
	}
	return v, nil
}

// Render writes page with status. The page is rendered into a buffer first
// so a template error never produces a half-written response.
func (v *Views) Render(w http.ResponseWriter, status int, page string, data PageData) error {
	t, ok := v.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
