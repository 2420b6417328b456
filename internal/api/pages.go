package api

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed web
var webFS embed.FS

func (s *Server) registerPages(mux *http.ServeMux) {
	root, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}

	mux.Handle("GET /static/", http.FileServerFS(root))
	mux.HandleFunc("GET /login", servePage(root, "login.html"))
	mux.HandleFunc("GET /report", servePage(root, "report.html"))
	mux.HandleFunc("GET /{$}", servePage(root, "index.html"))
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func servePage(root fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := fs.ReadFile(root, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}
