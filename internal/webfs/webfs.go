// Package webfs provides the embedded front-end bundle.
package webfs

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed all:dist
var FS embed.FS

// Assets returns the bundle with dist as root
func Assets() (fs.FS, error) {
	return fs.Sub(FS, "dist")
}

// RegisterStaticRoutes serves the bundle for every GET route not claimed by
// a command. Unknown paths get index.html so front-end routing works.
func RegisterStaticRoutes(e *echo.Echo, m ...echo.MiddlewareFunc) error {
	assets, err := Assets()
	if err != nil {
		return err
	}
	fileServer := http.FileServer(http.FS(assets))

	e.GET("/*", func(c echo.Context) error {
		name := strings.TrimPrefix(path.Clean(c.Request().URL.Path), "/")
		if name == "" {
			name = "."
		}
		info, err := fs.Stat(assets, name)
		if err != nil || (info.IsDir() && !hasIndex(assets, name)) {
			return serveIndex(c, assets)
		}
		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	}, m...)
	return nil
}

func hasIndex(assets fs.FS, dir string) bool {
	_, err := fs.Stat(assets, path.Join(dir, "index.html"))
	return err == nil
}

// serveIndex serves the root index.html
func serveIndex(c echo.Context, assets fs.FS) error {
	content, err := fs.ReadFile(assets, "index.html")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "index.html not found")
	}
	return c.HTMLBlob(http.StatusOK, content)
}
