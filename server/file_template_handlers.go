package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*
var templateFiles embed.FS

const contentTypeHTML = "text/html; charset=utf-8"

// View names
const (
	ViewIndex      = "index"
	ViewProfile    = "profile"
	ViewProject    = "project"
	ViewActivities = "activities"
	ViewError      = "error"
)

var viewNames = []string{ViewIndex, ViewProfile, ViewProject, ViewActivities, ViewError}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// Views holds one parsed template set (layout + page) per view.
type Views struct {
	templates map[string]*template.Template
}

func NewViews() (*Views, error) {
	v := &Views{templates: make(map[string]*template.Template, len(viewNames))}
	for _, name := range viewNames {
		tmpl, err := template.ParseFS(TemplateFilesFS(), "layout.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", name, err)
		}
		v.templates[name] = tmpl
	}
	return v, nil
}

// Render executes the view into a buffer first so a template failure never
// leaves a half written page behind.
func (v *Views) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := v.templates[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render view %s: %w", name, err)
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
