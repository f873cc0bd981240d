package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// The credentials screen is served at /, its form posts go to /app/*, and
// static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /app/save", requireCSRF(h.Save))
	mux.HandleFunc("POST /app/generate", requireCSRF(h.Generate))
	mux.HandleFunc("POST /app/copy", requireCSRF(h.Copy))
	mux.HandleFunc("POST /app/delete", requireCSRF(h.Delete))
}
