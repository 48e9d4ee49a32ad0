// Package web serves the pre-built single-page application: the entry
// document at "/" and the bundled files under "/assets/".
package web

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edgard/guildsite/internal/logger"
)

const (
	// IndexFile is the application's entry page inside the build directory.
	IndexFile = "index.html"
	// AssetsDir is the bundled asset directory inside the build directory.
	AssetsDir = "assets"
)

// NewRouter returns the HTTP handler for a build output directory.
func NewRouter(dir string, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.HTTPMiddleware(log.With("component", "http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	index := filepath.Join(dir, IndexFile)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, index)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	assets := http.StripPrefix("/"+AssetsDir+"/", http.FileServer(http.Dir(filepath.Join(dir, AssetsDir))))
	r.Get("/"+AssetsDir+"/*", func(w http.ResponseWriter, r *http.Request) {
		// No directory listings.
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		assets.ServeHTTP(w, r)
	})

	return r
}

// CheckBuildDir warns when the build output directory is missing. Startup
// continues either way; requests fail at serve time instead.
func CheckBuildDir(dir string, log *slog.Logger) bool {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return true
	}
	log.Warn("Build directory not found, run 'npm run build' in the client", "path", dir)
	return false
}
