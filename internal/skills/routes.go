// internal/skills/routes.go
// Route registration for skill catalog endpoints

package skills

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers skill catalog routes on the API router
func RegisterRoutes(router *mux.Router, handlers *Handlers, authMiddleware func(http.Handler) http.Handler) {
	// Browsing is public
	public := router.PathPrefix("/skills").Subrouter()
	public.HandleFunc("", handlers.List).Methods("GET")
	public.HandleFunc("/categories", handlers.Categories).Methods("GET")
	public.HandleFunc("/popular", handlers.Popular).Methods("GET")

	protected := router.PathPrefix("/skills").Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("", handlers.Create).Methods("POST")
	protected.HandleFunc("/{id:[0-9]+}", handlers.Update).Methods("PUT")
	protected.HandleFunc("/{id:[0-9]+}", handlers.Delete).Methods("DELETE")
}
