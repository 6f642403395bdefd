// internal/chat/routes.go
// Route registration for chat endpoints

package chat

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers chat routes on the API router.
// The websocket route authenticates itself via query token; everything else
// goes through the standard middleware.
func RegisterRoutes(router *mux.Router, handlers *Handlers, authMiddleware func(http.Handler) http.Handler) {
	router.HandleFunc("/chats/ws", handlers.ServeWS).Methods("GET")

	chats := router.PathPrefix("/chats").Subrouter()
	chats.Use(authMiddleware)

	chats.HandleFunc("", handlers.ListChats).Methods("GET")
	chats.HandleFunc("/unread", handlers.UnreadCount).Methods("GET")
	chats.HandleFunc("/match/{matchId:[0-9]+}", handlers.OpenChat).Methods("POST")
	chats.HandleFunc("/{id:[0-9]+}/messages", handlers.ListMessages).Methods("GET")
	chats.HandleFunc("/{id:[0-9]+}/messages", handlers.SendMessage).Methods("POST")
	chats.HandleFunc("/{id:[0-9]+}/read", handlers.MarkRead).Methods("POST")
}
