// Package web embeds the built dashboard (dist/) and serves it as a
// single-page application. Unknown paths fall back to index.html so
// client-side routes resolve after a full page load.
package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
)

//go:embed all:dist
var distFS embed.FS

// SPAHandler returns an http.Handler serving the embedded dashboard.
func SPAHandler() http.Handler {
	subFS, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}

	fileServer := http.FileServer(http.FS(subFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}

		if fileExists(subFS, path) {
			fileServer.ServeHTTP(w, r)
			return
		}

		// Unknown path, hand the request to the SPA entry point.
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}

func fileExists(fsys fs.FS, path string) bool {
	f, err := fsys.Open(path)
	if err != nil {
		return false
	}
	if err := f.Close(); err != nil {
		slog.Debug("close embedded file", "path", path, "error", err)
	}
	return true
}
