// internal/community/routes.go
// Route registration for community endpoints

package community

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers community routes on the API router
func RegisterRoutes(router *mux.Router, handlers *Handlers, authMiddleware func(http.Handler) http.Handler) {
	// Browsing is public
	public := router.PathPrefix("/communities").Subrouter()
	public.HandleFunc("", handlers.List).Methods("GET")
	public.HandleFunc("/{id:[0-9]+}", handlers.Get).Methods("GET")
	public.HandleFunc("/{id:[0-9]+}/members", handlers.ListMembers).Methods("GET")

	protected := router.PathPrefix("/communities").Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("", handlers.Create).Methods("POST")
	protected.HandleFunc("/{id:[0-9]+}", handlers.Update).Methods("PUT")
	protected.HandleFunc("/{id:[0-9]+}", handlers.Delete).Methods("DELETE")
	protected.HandleFunc("/{id:[0-9]+}/join", handlers.Join).Methods("POST")
	protected.HandleFunc("/{id:[0-9]+}/leave", handlers.Leave).Methods("POST")
	protected.HandleFunc("/{id:[0-9]+}/moderators/{userId:[0-9]+}", handlers.PromoteModerator).Methods("POST")
}
