package web

import (
	"embed"
	"html/template"
)

//go:embed template/*.html
var templatesFS embed.FS

// ParseTemplates parses every page and partial with funcs available.
func ParseTemplates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "template/*.html")
}
