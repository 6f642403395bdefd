// internal/chat/handlers.go
// HTTP and websocket handlers for chat endpoints

package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/skillbarter/backend/internal/common/utils"
	"github.com/skillbarter/backend/internal/matching"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is handled by the CORS layer
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handlers contains chat HTTP handlers
type Handlers struct {
	service   Service
	hub       *Hub
	jwtSecret string
}

// NewHandlers creates new chat handlers
func NewHandlers(service Service, hub *Hub, jwtSecret string) *Handlers {
	return &Handlers{service: service, hub: hub, jwtSecret: jwtSecret}
}

// OpenChat gets or creates the chat for an accepted match
// POST /api/chats/match/{matchId}
func (h *Handlers) OpenChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	matchID, err := strconv.ParseInt(mux.Vars(r)["matchId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	chat, err := h.service.GetOrCreateChat(r.Context(), userID, matchID)
	if err != nil {
		respondChatError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, chat)
}

// ListChats returns the user's conversations with unread counts
// GET /api/chats
func (h *Handlers) ListChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	chats, err := h.service.ListChats(r.Context(), userID)
	if err != nil {
		respondChatError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, chats)
}

// ListMessages returns paginated messages, newest first
// GET /api/chats/{id}/messages?page=1&limit=50
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	chatID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	messages, total, err := h.service.ListMessages(r.Context(), userID, chatID, page, limit)
	if err != nil {
		respondChatError(w, err)
		return
	}

	utils.RespondWithPage(w, http.StatusOK, messages, utils.NewPagination(page, limit, total))
}

// SendMessage posts a message over HTTP
// POST /api/chats/{id}/messages
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	chatID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := h.service.SendMessage(r.Context(), userID, chatID, &req)
	if err != nil {
		respondChatError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, message)
}

// MarkRead stamps all incoming messages in a chat as read
// POST /api/chats/{id}/read
func (h *Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	chatID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	updated, err := h.service.MarkRead(r.Context(), userID, chatID)
	if err != nil {
		respondChatError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]int64{"marked_read": updated})
}

// UnreadCount returns the user's total unread message count
// GET /api/chats/unread
func (h *Handlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		respondChatError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]int{"unread": count})
}

// ServeWS upgrades the connection to a websocket. Browsers cannot set an
// Authorization header on websocket requests, so the token rides in the
// query string.
// GET /api/chats/ws?token=...
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Token required")
		return
	}

	claims, err := utils.ValidateJWT(token, h.jwtSecret)
	if err != nil || claims.Type != "access" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed for user %d: %v", claims.UserID, err)
		return
	}

	client := newClient(h.hub, h.service, conn, claims.UserID)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// respondChatError maps service errors to HTTP status codes
func respondChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrChatNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Chat not found")
	case errors.Is(err, matching.ErrMatchNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Match not found")
	case errors.Is(err, ErrNotParticipant), errors.Is(err, matching.ErrNotParticipant):
		utils.RespondWithError(w, http.StatusForbidden, "Not a participant")
	case errors.Is(err, matching.ErrMatchNotAccepted):
		utils.RespondWithError(w, http.StatusConflict, "Chat requires an accepted match")
	case errors.Is(err, ErrEmptyMessage):
		utils.RespondWithError(w, http.StatusBadRequest, "Message content is empty")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
