// internal/auth/handlers.go
// HTTP handlers for authentication endpoints

package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/skillbarter/backend/internal/common/utils"
	"github.com/skillbarter/backend/internal/users"
)

// Handlers contains auth HTTP handlers
type Handlers struct {
	service Service
}

// NewHandlers creates new auth handlers
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// Signup registers a new account
// POST /api/auth/signup
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Signup(r.Context(), &req, r.UserAgent(), clientIP(r))
	if err != nil {
		respondAuthError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, resp)
}

// Signin authenticates with email and password
// POST /api/auth/signin
func (h *Handlers) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Signin(r.Context(), &req, r.UserAgent(), clientIP(r))
	if err != nil {
		respondAuthError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, resp)
}

// GoogleSignin authenticates with a Google ID token
// POST /api/auth/google
func (h *Handlers) GoogleSignin(w http.ResponseWriter, r *http.Request) {
	var req GoogleSigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.GoogleSignin(r.Context(), &req, r.UserAgent(), clientIP(r))
	if err != nil {
		respondAuthError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new pair
// POST /api/auth/refresh
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.Refresh(r.Context(), &req)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, tokens)
}

// Signout revokes the presented refresh token
// POST /api/auth/signout
func (h *Handlers) Signout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Signout(r.Context(), req.RefreshToken); err != nil {
		respondAuthError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Signed out")
}

// SignoutAll revokes every session for the authenticated user
// POST /api/auth/signout-all
func (h *Handlers) SignoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.SignoutAll(r.Context(), userID); err != nil {
		respondAuthError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Signed out everywhere")
}

// clientIP strips the port from the remote address
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// respondAuthError maps service errors to HTTP status codes
func respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrEmailTaken):
		utils.RespondWithError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, ErrInvalidToken):
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, ErrGoogleToken):
		utils.RespondWithError(w, http.StatusUnauthorized, "Google token verification failed")
	case errors.Is(err, users.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
