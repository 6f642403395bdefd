// internal/matching/handlers.go
// HTTP handlers for match endpoints

package matching

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/skillbarter/backend/internal/common/utils"
	"github.com/skillbarter/backend/internal/users"
)

// Handlers contains match HTTP handlers
type Handlers struct {
	service Service
}

// NewHandlers creates new match handlers
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// Discover returns ranked potential exchange partners
// GET /api/matches/discover?limit=10
func (h *Handlers) Discover(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.service.Discover(r.Context(), userID, limit)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, results)
}

// Preview scores a specific pair without creating anything
// GET /api/matches/preview/{userId}
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	otherID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	result, err := h.service.Preview(r.Context(), userID, otherID)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, result)
}

// Create sends a match request to another user
// POST /api/matches
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, match)
}

// Respond accepts or rejects a pending match
// POST /api/matches/{id}/respond
func (h *Handlers) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var req RespondMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, err := h.service.Respond(r.Context(), userID, matchID, req.Action == "accept")
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, match)
}

// Complete marks an accepted match as completed
// POST /api/matches/{id}/complete
func (h *Handlers) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Complete)
}

// Cancel cancels a pending or accepted match
// POST /api/matches/{id}/cancel
func (h *Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

// Get returns a single match for a participant
// GET /api/matches/{id}
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Get)
}

// List returns the authenticated user's matches
// GET /api/matches?status=pending&page=1&limit=20
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	matches, total, err := h.service.List(r.Context(), userID, q.Get("status"), page, limit)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithPage(w, http.StatusOK, matches, utils.NewPagination(page, limit, total))
}

// ScheduleSession schedules a session within an accepted match
// POST /api/matches/{id}/sessions
func (h *Handlers) ScheduleSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var req ScheduleSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.ScheduleSession(r.Context(), userID, matchID, &req)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, session)
}

// ListSessions lists sessions for a match
// GET /api/matches/{id}/sessions
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), userID, matchID)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, sessions)
}

// CompleteSession marks a scheduled session as completed
// POST /api/matches/{id}/sessions/{sessionId}/complete
func (h *Handlers) CompleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	matchID, sessionID, err := sessionVars(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	session, err := h.service.CompleteSession(r.Context(), userID, matchID, sessionID)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, session)
}

// RateSession rates a completed session
// POST /api/matches/{id}/sessions/{sessionId}/rate
func (h *Handlers) RateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	matchID, sessionID, err := sessionVars(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	var req RateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.RateSession(r.Context(), userID, matchID, sessionID, req.Rating)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, session)
}

// transition handles the shared shape of single-match operations
func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, matchID int64) (*Match, error)) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	match, err := op(r.Context(), userID, matchID)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, match)
}

// sessionVars parses the match and session IDs from the route
func sessionVars(r *http.Request) (int64, int64, error) {
	vars := mux.Vars(r)
	matchID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	sessionID, err := strconv.ParseInt(vars["sessionId"], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return matchID, sessionID, nil
}

// respondMatchError maps service errors to HTTP status codes
func respondMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrMatchNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Match not found")
	case errors.Is(err, ErrSessionNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, ErrSelfMatch):
		utils.RespondWithError(w, http.StatusBadRequest, "Cannot match with yourself")
	case errors.Is(err, ErrDuplicateMatch):
		utils.RespondWithError(w, http.StatusConflict, "An active match already exists with this user")
	case errors.Is(err, ErrNotParticipant):
		utils.RespondWithError(w, http.StatusForbidden, "Not a participant in this match")
	case errors.Is(err, ErrNotRecipient):
		utils.RespondWithError(w, http.StatusForbidden, "Only the recipient can respond to a match request")
	case errors.Is(err, ErrInvalidTransition):
		utils.RespondWithError(w, http.StatusConflict, "Invalid status transition")
	case errors.Is(err, ErrMatchNotAccepted):
		utils.RespondWithError(w, http.StatusConflict, "Match is not accepted")
	case errors.Is(err, ErrSessionNotCompleted):
		utils.RespondWithError(w, http.StatusConflict, "Session is not completed")
	case errors.Is(err, ErrAlreadyRated):
		utils.RespondWithError(w, http.StatusConflict, "Session already rated")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
