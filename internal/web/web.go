package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"ski-portal/internal/data/entity"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

const layoutFile = "templates/layout.html"

// Page is what every template receives. Data holds the page-specific view.
type Page struct {
	AppName string
	Title   string
	User    *entity.User
	Flash   Flash
	Path    string
	Data    any
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	appName string
	pages   map[string]*template.Template
	log     *zap.Logger
}

func NewRenderer(appName string, log *zap.Logger) (*Renderer, error) {
	base, err := template.New(path.Base(layoutFile)).Funcs(funcMap()).ParseFS(templatesFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}

		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", file, err)
		}
		if _, err := t.ParseFS(templatesFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}

	return &Renderer{
		appName: appName,
		pages:   pages,
		log:     log.With(zap.String("component", "renderer")),
	}, nil
}

// Render buffers the page so a template error never leaves a half-written
// response behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	t, ok := r.pages[name]
	if !ok {
		r.log.Error("Unknown template", zap.String("template", name))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	page.AppName = r.appName

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		r.log.Error("Failed to render template",
			zap.Error(err),
			zap.String("template", name))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Has reports whether a page template with the given name was loaded.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Static serves the embedded assets under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
