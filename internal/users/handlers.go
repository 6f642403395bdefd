// internal/users/handlers.go
// HTTP handlers for user endpoints

package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/skillbarter/backend/internal/common/utils"
)

// Handlers contains user HTTP handlers
type Handlers struct {
	service Service
}

// NewHandlers creates new user handlers
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// GetMe returns the authenticated user's full profile
// GET /api/users/me
func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		respondUserError(w, err)
		return
	}

	h.service.RecordActivity(r.Context(), userID)
	utils.RespondWithData(w, http.StatusOK, user)
}

// GetUser returns another user's public profile
// GET /api/users/{id}
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	profile, err := h.service.GetPublicProfile(r.Context(), id)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, profile)
}

// UpdateMe updates the authenticated user's profile
// PUT /api/users/me
func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, user)
}

// AddOfferedSkill adds a skill to the authenticated user's teach list
// POST /api/users/me/skills/offered
func (h *Handlers) AddOfferedSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddOfferedSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.AddOfferedSkill(r.Context(), userID, &req)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, user)
}

// RemoveOfferedSkill removes a skill from the teach list
// DELETE /api/users/me/skills/offered/{name}
func (h *Handlers) RemoveOfferedSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	name := mux.Vars(r)["name"]
	user, err := h.service.RemoveOfferedSkill(r.Context(), userID, name)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, user)
}

// ReplaceOfferedSkills replaces the authenticated user's teach list
// PUT /api/users/me/skills/offered
func (h *Handlers) ReplaceOfferedSkills(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ReplaceOfferedSkillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.ReplaceOfferedSkills(r.Context(), userID, &req)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, user)
}

// AddWantedSkill adds a skill to the authenticated user's learn list
// POST /api/users/me/skills/wanted
func (h *Handlers) AddWantedSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddWantedSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.AddWantedSkill(r.Context(), userID, &req)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, user)
}

// RemoveWantedSkill removes a skill from the learn list
// DELETE /api/users/me/skills/wanted/{name}
func (h *Handlers) RemoveWantedSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	name := mux.Vars(r)["name"]
	user, err := h.service.RemoveWantedSkill(r.Context(), userID, name)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, user)
}

// ReplaceWantedSkills replaces the authenticated user's learn list
// PUT /api/users/me/skills/wanted
func (h *Handlers) ReplaceWantedSkills(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ReplaceWantedSkillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.ReplaceWantedSkills(r.Context(), userID, &req)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, user)
}

// Search searches users by name, skill, or city
// GET /api/users/search?q=...&skill=...&city=...&page=1&limit=20
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	req := &SearchRequest{
		Query: q.Get("q"),
		Skill: q.Get("skill"),
		City:  q.Get("city"),
		Page:  page,
		Limit: limit,
	}

	profiles, total, err := h.service.Search(r.Context(), req)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithPage(w, http.StatusOK, profiles, utils.NewPagination(req.Page, req.Limit, total))
}

// GetDashboard returns the authenticated user's dashboard
// GET /api/users/me/dashboard
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	dashboard, err := h.service.GetDashboard(r.Context(), userID)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, dashboard)
}

// UploadAvatar handles multipart avatar uploads
// POST /api/users/me/avatar
func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing avatar file")
		return
	}
	defer file.Close()

	url, err := h.service.UploadAvatar(r.Context(), userID, file, header)
	if err != nil {
		respondUserError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"avatar_url": url})
}

// respondUserError maps service errors to HTTP status codes
func respondUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrSkillExists):
		utils.RespondWithError(w, http.StatusConflict, "Skill already in list")
	case errors.Is(err, ErrSkillNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Skill not in list")
	case errors.Is(err, ErrInvalidSkill), errors.Is(err, ErrInvalidImage):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
