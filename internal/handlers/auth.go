package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/taskpilot/taskpilot/internal/database"
	"github.com/taskpilot/taskpilot/internal/models"
	"github.com/taskpilot/taskpilot/internal/services/auth"
	"github.com/taskpilot/taskpilot/internal/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userRepo database.UserRepositoryInterface
	tokens   *auth.TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userRepo database.UserRepositoryInterface, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, tokens: tokens}
}

// RegisterRoutes registers public auth routes on the given router
// The router should already have the /auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/refresh", h.Refresh).Methods("POST")
}

// RegisterProtectedRoutes registers auth routes that require a valid token
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPairResponse carries a fresh access/refresh token pair
type TokenPairResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user,omitempty"`
}

// Register creates a new user account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	ctx := r.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.userRepo.GetByEmail(ctx, email); err == nil {
		respondJSONError(w, http.StatusConflict, "Conflict", "An account with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if req.Name != nil {
		name := validation.SanitizeText(*req.Name)
		if name != "" {
			user.Name = &name
		}
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	pair, ok := h.issueTokens(w, ctx, user)
	if !ok {
		return
	}

	respondJSON(w, http.StatusCreated, pair)
}

// Login authenticates a user and issues a token pair
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	ctx := r.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Same response as a bad password so callers cannot probe for accounts
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}

	if !user.IsActive {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Account is deactivated")
		return
	}

	if err := h.userRepo.RecordLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to log in")
		return
	}

	pair, ok := h.issueTokens(w, ctx, user)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, pair)
}

// Refresh exchanges a valid refresh token for a new token pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	ctx := r.Context()
	claims, err := h.tokens.ValidateRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired refresh token")
		return
	}

	user, err := h.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found")
		return
	}
	if !user.IsActive {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Account is deactivated")
		return
	}

	pair, ok := h.issueTokens(w, ctx, user)
	if !ok {
		return
	}
	// Token-only response; the client already knows who it is
	pair.User = nil

	respondJSON(w, http.StatusOK, pair)
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, ctx context.Context, user *models.User) (*TokenPairResponse, bool) {
	accessToken, err := h.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue tokens")
		return nil, false
	}

	refreshToken, err := h.tokens.GenerateRefreshToken(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue tokens")
		return nil, false
	}

	return &TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, true
}
