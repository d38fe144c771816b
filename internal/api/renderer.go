package api

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// Renderer satisfies echo.Renderer with one parsed template tree. Every page
// template is defined by name and shares the base layout.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses every template under dir.
func NewRenderer(dir string) (*Renderer, error) {
	t, err := template.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
