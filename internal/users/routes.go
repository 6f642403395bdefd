// internal/users/routes.go
// Route registration for user endpoints

package users

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers user routes on the API router.
// All routes require authentication.
func RegisterRoutes(router *mux.Router, handlers *Handlers, authMiddleware func(http.Handler) http.Handler) {
	users := router.PathPrefix("/users").Subrouter()
	users.Use(authMiddleware)

	users.HandleFunc("/me", handlers.GetMe).Methods("GET")
	users.HandleFunc("/me", handlers.UpdateMe).Methods("PUT")
	users.HandleFunc("/me/dashboard", handlers.GetDashboard).Methods("GET")
	users.HandleFunc("/me/avatar", handlers.UploadAvatar).Methods("POST")
	users.HandleFunc("/me/skills/offered", handlers.AddOfferedSkill).Methods("POST")
	users.HandleFunc("/me/skills/offered", handlers.ReplaceOfferedSkills).Methods("PUT")
	users.HandleFunc("/me/skills/offered/{name}", handlers.RemoveOfferedSkill).Methods("DELETE")
	users.HandleFunc("/me/skills/wanted", handlers.AddWantedSkill).Methods("POST")
	users.HandleFunc("/me/skills/wanted", handlers.ReplaceWantedSkills).Methods("PUT")
	users.HandleFunc("/me/skills/wanted/{name}", handlers.RemoveWantedSkill).Methods("DELETE")
	users.HandleFunc("/search", handlers.Search).Methods("GET")
	users.HandleFunc("/{id:[0-9]+}", handlers.GetUser).Methods("GET")
}
