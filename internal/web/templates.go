package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/mgreer/playlist-charts/internal/analyze"
	"github.com/mgreer/playlist-charts/internal/spotify"
)

// Templates manages HTML page rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates loads page templates from the given filesystem. Each
// page under pages/ is parsed together with the layouts.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("finding layouts: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("finding pages: %w", err)
	}

	for _, page := range pages {
		name := path.Base(page)
		name = name[:len(name)-len(".html")]

		files := append([]string{page}, layouts...)
		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	return t, nil
}

// Render renders a page template inside the base layout.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// chartData serializes a frequency table for the pie-chart
		// script.
		"chartData": func(table analyze.FrequencyTable) (template.JS, error) {
			data, err := json.Marshal(table)
			if err != nil {
				return "", err
			}
			return template.JS(data), nil //nolint:gosec // JSON-encoded data
		},
	}
}

// PageData contains fields common to all pages.
type PageData struct {
	Title         string
	Authenticated bool
	CurrentPath   string
}

// PlaylistsPageData contains data for the playlist listing page.
type PlaylistsPageData struct {
	PageData
	Playlists []spotify.Playlist
}

// ResultsPageData contains data for the analysis results page.
type ResultsPageData struct {
	PageData
	Result *analyze.Result
}
