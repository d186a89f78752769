package handlers

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"log"
	"net/http"
)

//go:embed templates/*
var templatesFS embed.FS

// Renderer handles template rendering
type Renderer struct {
	templates *template.Template
	logger    *log.Logger
}

var funcMap = template.FuncMap{
	"toJSON": func(v interface{}) template.JS {
		b, _ := json.Marshal(v)
		return template.JS(b)
	},
}

// NewRenderer parses the embedded templates
func NewRenderer(logger *log.Logger) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Renderer{
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Render renders a template with data
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// RenderPage renders a page template and handles errors
func (r *Renderer) RenderPage(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := r.Render(w, name, data); err != nil {
		r.logger.Printf("Failed to render template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
