package apiserver

import (
	"log"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"spur-go/internal/auth"
	"spur-go/internal/middleware"
	"spur-go/internal/models"
	"spur-go/internal/services"
)

const (
	maxUsernameLength = 50
	maxNameLength     = 100
	minPasswordLength = 8
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	authService    services.AuthService
	tokenBlacklist auth.TokenBlacklist
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthService, tokenBlacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{authService: authService, tokenBlacklist: tokenBlacklist}
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	UsernameOrEmail string `json:"username"`
	Password        string `json:"password"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (req *RegisterRequest) validate() string {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Username == "" || utf8.RuneCountInString(req.Username) > maxUsernameLength:
		return "username must be between 1 and 50 characters"
	case strings.ContainsAny(req.Username, " \t\n@"):
		return "username must not contain whitespace or '@'"
	case req.Name == "" || utf8.RuneCountInString(req.Name) > maxNameLength:
		return "name must be between 1 and 100 characters"
	case utf8.RuneCountInString(req.Password) < minPasswordLength:
		return "password must be at least 8 characters"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "email is invalid"
	}
	return ""
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSONError(w, msg, http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.UsernameOrEmail = strings.TrimSpace(req.UsernameOrEmail)
	if req.UsernameOrEmail == "" || req.Password == "" {
		writeJSONError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout handles POST /api/v1/auth/logout by revoking the caller's token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok || claims.ID == "" || claims.ExpiresAt == nil {
		writeJSONError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}

	if err := h.tokenBlacklist.Add(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		log.Printf("Error revoking token %s of user %d: %v", claims.ID, claims.UserID, err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}
