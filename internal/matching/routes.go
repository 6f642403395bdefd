// internal/matching/routes.go
// Route registration for match endpoints

package matching

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers match routes on the API router.
// All routes require authentication.
func RegisterRoutes(router *mux.Router, handlers *Handlers, authMiddleware func(http.Handler) http.Handler) {
	matches := router.PathPrefix("/matches").Subrouter()
	matches.Use(authMiddleware)

	matches.HandleFunc("", handlers.List).Methods("GET")
	matches.HandleFunc("", handlers.Create).Methods("POST")
	matches.HandleFunc("/discover", handlers.Discover).Methods("GET")
	matches.HandleFunc("/preview/{userId:[0-9]+}", handlers.Preview).Methods("GET")
	matches.HandleFunc("/{id:[0-9]+}", handlers.Get).Methods("GET")
	matches.HandleFunc("/{id:[0-9]+}/respond", handlers.Respond).Methods("POST")
	matches.HandleFunc("/{id:[0-9]+}/complete", handlers.Complete).Methods("POST")
	matches.HandleFunc("/{id:[0-9]+}/cancel", handlers.Cancel).Methods("POST")
	matches.HandleFunc("/{id:[0-9]+}/sessions", handlers.ListSessions).Methods("GET")
	matches.HandleFunc("/{id:[0-9]+}/sessions", handlers.ScheduleSession).Methods("POST")
	matches.HandleFunc("/{id:[0-9]+}/sessions/{sessionId:[0-9]+}/complete", handlers.CompleteSession).Methods("POST")
	matches.HandleFunc("/{id:[0-9]+}/sessions/{sessionId:[0-9]+}/rate", handlers.RateSession).Methods("POST")
}
