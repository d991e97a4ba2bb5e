// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public blog and
// for standalone style-guide exports. Page templates are paired with a
// shared layout; standalone templates carry their own <html> document.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds everything passed to a public page template.
type PageData struct {
	Title       string
	Description string
	SiteURL     string
	Data        map[string]any
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates render without the layout.
var standaloneTemplates = map[string]bool{
	"export": true,
}

// New parses all templates from the embedded filesystem.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"date": func(t *time.Time) string {
				if t == nil {
					return ""
				}
				return t.Format("January 2, 2006")
			},
			"join": strings.Join,
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "layout.html" {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		var parseErr error
		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(templateFS, "templates/"+name)
		} else {
			tmpl, parseErr = template.New("layout.html").Funcs(r.funcMap).ParseFS(
				templateFS, "templates/layout.html", "templates/"+name,
			)
		}
		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full public page with the given status.
func (rn *Renderer) Page(w http.ResponseWriter, status int, name string, data *PageData) {
	var buf bytes.Buffer
	if err := rn.Execute(&buf, name, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// Execute writes the named template to w.
func (rn *Renderer) Execute(w io.Writer, name string, data any) error {
	tmpl, ok := rn.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	execName := "layout.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}
	return tmpl.ExecuteTemplate(w, execName, data)
}

// ExportData is the input of the standalone export document.
type ExportData struct {
	Title       string
	Body        template.HTML
	GeneratedAt time.Time
}

// Export renders a self-contained HTML document around already rendered
// body HTML.
func (rn *Renderer) Export(data ExportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := rn.Execute(&buf, "export", data); err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}
	return buf.Bytes(), nil
}
