package server

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// hasDotDot reports whether any segment of p is ".."
func hasDotDot(p string) bool {
	if !strings.Contains(p, "..") {
		return false
	}
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// traversalGuard refuses paths that climb out of the served tree. It runs
// before the mux, which would otherwise redirect them to a cleaned path.
func (s *Server) traversalGuard(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hasDotDot(r.URL.Path) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// staticHandler serves the dashboard build from dir with cache headers and
// index.html fallback for client-side routing. Missing assets/ files return
// 404 instead of index.html so broken chunks surface.
func staticHandler(dir string) http.Handler {
	if dir == "" {
		return http.NotFoundHandler()
	}
	root := os.DirFS(dir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}
		if !fs.ValidPath(name) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if info, err := fs.Stat(root, name); err == nil && !info.IsDir() {
			if strings.HasPrefix(name, "assets/") {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			} else if name == "index.html" {
				w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			}
			http.ServeFileFS(w, r, root, name)
			return
		}

		if strings.HasPrefix(name, "assets/") {
			http.NotFound(w, r)
			return
		}

		if _, err := fs.Stat(root, "index.html"); err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		http.ServeFileFS(w, r, root, "index.html")
	})
}
