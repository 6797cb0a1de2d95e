// Package client provides the embedded browser client for folionav.
package client

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed src/*.js
var assets embed.FS

// Assets returns the embedded filesystem containing JavaScript files.
func Assets() fs.FS {
	fsys, err := fs.Sub(assets, "src")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Handler returns an HTTP handler that serves the embedded assets.
func Handler() http.Handler {
	return http.FileServer(http.FS(Assets()))
}

// GetFile returns the contents of an embedded file.
func GetFile(name string) ([]byte, error) {
	return assets.ReadFile("src/" + name)
}
