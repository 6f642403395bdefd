// internal/skills/handlers.go
// HTTP handlers for skill catalog endpoints

package skills

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/skillbarter/backend/internal/common/utils"
	"github.com/skillbarter/backend/internal/users"
)

// Handlers contains skill catalog HTTP handlers
type Handlers struct {
	service Service
}

// NewHandlers creates new skill catalog handlers
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// List returns catalog entries filtered by category and name search
// GET /api/skills?category=...&search=...&page=1&limit=20
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	req := &ListRequest{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	}

	skills, total, err := h.service.List(r.Context(), req)
	if err != nil {
		respondSkillError(w, err)
		return
	}

	utils.RespondWithPage(w, http.StatusOK, skills, utils.NewPagination(req.Page, req.Limit, total))
}

// Categories returns every category with its active skill count
// GET /api/skills/categories
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		respondSkillError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, categories)
}

// Popular returns the most popular catalog entries
// GET /api/skills/popular
func (h *Handlers) Popular(w http.ResponseWriter, r *http.Request) {
	skills, err := h.service.Popular(r.Context())
	if err != nil {
		respondSkillError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, skills)
}

// Create adds a catalog entry (admin only)
// POST /api/skills
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	skill, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		respondSkillError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, skill)
}

// Update edits a catalog entry (admin only)
// PUT /api/skills/{id}
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid skill ID")
		return
	}

	var req UpdateSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	skill, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		respondSkillError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, skill)
}

// Delete removes a catalog entry (admin only)
// DELETE /api/skills/{id}
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid skill ID")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondSkillError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Skill deleted")
}

// respondSkillError maps service errors to HTTP status codes
func respondSkillError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSkillNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Skill not found")
	case errors.Is(err, ErrNameTaken):
		utils.RespondWithError(w, http.StatusConflict, "Skill name already in catalog")
	case errors.Is(err, ErrInvalidCategory):
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid category")
	case errors.Is(err, ErrAdminOnly):
		utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
	case errors.Is(err, users.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusUnauthorized, "Unknown user")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
