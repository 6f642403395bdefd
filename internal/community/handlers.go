// internal/community/handlers.go
// HTTP handlers for community endpoints

package community

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/skillbarter/backend/internal/common/utils"
)

// Handlers contains community HTTP handlers
type Handlers struct {
	service Service
}

// NewHandlers creates new community handlers
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// Create creates a community owned by the caller
// POST /api/communities
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	community, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		respondCommunityError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, community)
}

// Get returns a community
// GET /api/communities/{id}
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid community ID")
		return
	}

	community, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondCommunityError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, community)
}

// Update edits a community (owner only)
// PUT /api/communities/{id}
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid community ID")
		return
	}

	var req UpdateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	community, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		respondCommunityError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, community)
}

// Delete removes a community (owner only)
// DELETE /api/communities/{id}
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid community ID")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondCommunityError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Community deleted")
}

// List returns public communities filtered by query, category, and skill
// GET /api/communities?q=...&category=...&skill=...&page=1&limit=20
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	req := &ListRequest{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Skill:    q.Get("skill"),
		Page:     page,
		Limit:    limit,
	}

	communities, total, err := h.service.List(r.Context(), req)
	if err != nil {
		respondCommunityError(w, err)
		return
	}

	utils.RespondWithPage(w, http.StatusOK, communities, utils.NewPagination(req.Page, req.Limit, total))
}

// Join adds the caller as a member
// POST /api/communities/{id}/join
func (h *Handlers) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid community ID")
		return
	}

	member, err := h.service.Join(r.Context(), userID, id)
	if err != nil {
		respondCommunityError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, member)
}

// Leave removes the caller from the community
// POST /api/communities/{id}/leave
func (h *Handlers) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid community ID")
		return
	}

	if err := h.service.Leave(r.Context(), userID, id); err != nil {
		respondCommunityError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Left community")
}

// PromoteModerator grants moderator to a member (owner only)
// POST /api/communities/{id}/moderators/{userId}
func (h *Handlers) PromoteModerator(w http.ResponseWriter, r *http.Request) {
	actorID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid community ID")
		return
	}
	userID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.PromoteModerator(r.Context(), actorID, id, userID); err != nil {
		respondCommunityError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Member promoted to moderator")
}

// ListMembers returns community members
// GET /api/communities/{id}/members?page=1&limit=50
func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid community ID")
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

	members, total, err := h.service.ListMembers(r.Context(), id, page, limit)
	if err != nil {
		respondCommunityError(w, err)
		return
	}

	utils.RespondWithPage(w, http.StatusOK, members, utils.NewPagination(page, limit, total))
}

// respondCommunityError maps service errors to HTTP status codes
func respondCommunityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCommunityNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Community not found")
	case errors.Is(err, ErrNameTaken):
		utils.RespondWithError(w, http.StatusConflict, "Community name already taken")
	case errors.Is(err, ErrAlreadyMember):
		utils.RespondWithError(w, http.StatusConflict, "Already a member")
	case errors.Is(err, ErrNotMember):
		utils.RespondWithError(w, http.StatusNotFound, "Not a member")
	case errors.Is(err, ErrNotOwner):
		utils.RespondWithError(w, http.StatusForbidden, "Only the owner can do this")
	case errors.Is(err, ErrOwnerCannotLeave):
		utils.RespondWithError(w, http.StatusConflict, "Owner cannot leave their community")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
