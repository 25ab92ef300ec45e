package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"spur-go/internal/middleware"
	"spur-go/internal/models"
	"spur-go/internal/services"
)

// FriendshipHandler handles HTTP requests related to friendships.
type FriendshipHandler struct {
	friendshipService services.FriendshipService
}

// NewFriendshipHandler creates a new FriendshipHandler.
func NewFriendshipHandler(fs services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipService: fs}
}

// AddFriendPayload is the body of POST /api/v1/friends.
type AddFriendPayload struct {
	RecipientUsername string `json:"recipientUsername"`
}

// FriendshipStatusResponse describes the relationship between the caller and Username.
type FriendshipStatusResponse struct {
	Username string `json:"username"`
	Status   string `json:"status"`
	// RequestedBy is set while the request is pending.
	RequestedBy string `json:"requestedBy,omitempty"`
}

func validUsername(username string) bool {
	return username != "" && utf8.RuneCountInString(username) <= maxUsernameLength
}

// AddFriend handles POST /api/v1/friends. It answers 201 when a request was
// created and 200 when an existing request from the recipient was accepted.
func (h *FriendshipHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}

	var payload AddFriendPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	recipient := strings.TrimSpace(payload.RecipientUsername)
	if !validUsername(recipient) {
		writeJSONError(w, "recipientUsername must be between 1 and 50 characters", http.StatusBadRequest)
		return
	}

	becameFriends, err := h.friendshipService.AddFriendByUsername(r.Context(), senderID, recipient)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if becameFriends {
		writeJSONResponse(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("You are now friends with %s", recipient)})
		return
	}
	writeJSONResponse(w, http.StatusCreated, MessageResponse{Message: fmt.Sprintf("Created a friend request to %s", recipient)})
}

// GetStatus handles GET /api/v1/friends/status?username=X.
func (h *FriendshipHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if !validUsername(username) {
		writeJSONError(w, "username query parameter is required", http.StatusBadRequest)
		return
	}

	status, err := h.friendshipService.GetStatus(r.Context(), userID, username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := FriendshipStatusResponse{Username: username, Status: status.State.String()}
	if status.State == models.FriendshipPending {
		if status.From == userID {
			resp.RequestedBy, _ = middleware.GetUsernameFromContext(r.Context())
		} else {
			resp.RequestedBy = username
		}
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// ListFriends handles GET /api/v1/friends.
func (h *FriendshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.friendshipService.ListFriends)
}

// ListPendingRequests handles GET /api/v1/friends/requests.
func (h *FriendshipHandler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.friendshipService.ListPendingRequests)
}

func (h *FriendshipHandler) listUsers(w http.ResponseWriter, r *http.Request, list func(context.Context, uint) ([]*models.UserBasicInfo, error)) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}

	users, err := list(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}

// ListFriendPosts handles GET /api/v1/friends/posts.
func (h *FriendshipHandler) ListFriendPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}

	posts, err := h.friendshipService.ListFriendPosts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, posts)
}
