package static

import (
	"embed"
	"net/http"
)

//go:embed *.js *.css
var files embed.FS

// FileSystem serves the embedded browser client assets.
func FileSystem() http.FileSystem {
	return http.FS(files)
}
