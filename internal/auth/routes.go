// internal/auth/routes.go
// Route registration for auth endpoints

package auth

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers auth routes on the API router
func RegisterRoutes(router *mux.Router, handlers *Handlers, authMiddleware func(http.Handler) http.Handler) {
	authRouter := router.PathPrefix("/auth").Subrouter()

	authRouter.HandleFunc("/signup", handlers.Signup).Methods("POST")
	authRouter.HandleFunc("/signin", handlers.Signin).Methods("POST")
	authRouter.HandleFunc("/google", handlers.GoogleSignin).Methods("POST")
	authRouter.HandleFunc("/refresh", handlers.Refresh).Methods("POST")
	authRouter.HandleFunc("/signout", handlers.Signout).Methods("POST")

	protected := router.PathPrefix("/auth").Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/signout-all", handlers.SignoutAll).Methods("POST")
}
