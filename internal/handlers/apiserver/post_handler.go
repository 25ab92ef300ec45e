package apiserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"spur-go/internal/middleware"
	"spur-go/internal/services"
)

// PostHandler handles HTTP requests related to posts.
type PostHandler struct {
	postService services.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(ps services.PostService) *PostHandler {
	return &PostHandler{postService: ps}
}

// CreateReplyPayload is the body of POST /api/v1/posts.
type CreateReplyPayload struct {
	ParentID uint   `json:"parentId"`
	Body     string `json:"body"`
}

// CreateReply handles POST /api/v1/posts.
func (h *PostHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	authorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}

	var payload CreateReplyPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.ParentID == 0 {
		writeJSONError(w, "parentId is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Body) == "" {
		writeJSONError(w, "body must not be empty", http.StatusBadRequest)
		return
	}

	post, err := h.postService.CreateReply(r.Context(), authorID, payload.ParentID, payload.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, post)
}

// GetPost handles GET /api/v1/posts/{postID}.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromPath(w, r)
	if !ok {
		return
	}

	post, err := h.postService.GetPost(r.Context(), postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, post)
}

// ListChildren handles GET /api/v1/posts/{postID}/children.
func (h *PostHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromPath(w, r)
	if !ok {
		return
	}

	posts, err := h.postService.ListChildren(r.Context(), postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, posts)
}

// ListUserPosts handles GET /api/v1/posts/user/{username}.
func (h *PostHandler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if !validUsername(username) {
		writeJSONError(w, "Invalid username", http.StatusBadRequest)
		return
	}

	posts, err := h.postService.ListUserPosts(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, posts)
}

// ListMyPosts handles GET /api/v1/posts/me.
func (h *PostHandler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}

	posts, err := h.postService.ListOwnPosts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, posts)
}

func postIDFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	postID, err := strconv.ParseUint(mux.Vars(r)["postID"], 10, 64)
	if err != nil || postID == 0 {
		writeJSONError(w, "Invalid post ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(postID), true
}
