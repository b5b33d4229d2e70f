// Package web holds the HTML templates and static assets served by the app.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"
)

//go:embed templates static
var FS embed.FS

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"hasPrefix": strings.HasPrefix,
		"millis":    func(d time.Duration) int64 { return d.Milliseconds() },
		"query":     url.QueryEscape,
	}
}

// ParseTemplates parses templates/*.html and templates/partials/*.html from
// fsys into one master template.
func ParseTemplates(fsys fs.FS) (*template.Template, error) {
	master := template.New("").Funcs(FuncMap())
	for _, pattern := range []string{
		path.Join("templates", "*.html"),
		path.Join("templates", "partials", "*.html"),
	} {
		if _, err := master.ParseFS(fsys, pattern); err != nil {
			return nil, err
		}
	}
	return master, nil
}
