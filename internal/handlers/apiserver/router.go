package apiserver

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"spur-go/internal/config"
)

// Handlers groups every handler the API router serves.
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Friendship *FriendshipHandler
	Post       *PostHandler
}

// NewRouter wires the public and authenticated routes. authMW guards
// everything under /api/v1.
func NewRouter(h Handlers, authMW mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ping", Ping).Methods(http.MethodGet)

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	apiRouter.HandleFunc("/auth/check", CheckToken).Methods(http.MethodGet)
	apiRouter.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)
	apiRouter.HandleFunc("/users/me", h.User.GetMyProfile).Methods(http.MethodGet)

	friendsRouter := apiRouter.PathPrefix("/friends").Subrouter()
	friendsRouter.HandleFunc("", h.Friendship.AddFriend).Methods(http.MethodPost)
	friendsRouter.HandleFunc("", h.Friendship.ListFriends).Methods(http.MethodGet)
	friendsRouter.HandleFunc("/requests", h.Friendship.ListPendingRequests).Methods(http.MethodGet)
	friendsRouter.HandleFunc("/posts", h.Friendship.ListFriendPosts).Methods(http.MethodGet)
	friendsRouter.HandleFunc("/status", h.Friendship.GetStatus).Methods(http.MethodGet)

	postsRouter := apiRouter.PathPrefix("/posts").Subrouter()
	postsRouter.HandleFunc("", h.Post.CreateReply).Methods(http.MethodPost)
	postsRouter.HandleFunc("/me", h.Post.ListMyPosts).Methods(http.MethodGet)
	postsRouter.HandleFunc("/user/{username}", h.Post.ListUserPosts).Methods(http.MethodGet)
	postsRouter.HandleFunc("/{postID:[0-9]+}", h.Post.GetPost).Methods(http.MethodGet)
	postsRouter.HandleFunc("/{postID:[0-9]+}/children", h.Post.ListChildren).Methods(http.MethodGet)

	return r
}

// Ping handles GET /ping. It needs no token, so it doubles as a health check.
func Ping(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: "pong"})
}

// CheckToken handles GET /api/v1/auth/check. Reaching it means the auth
// middleware accepted the bearer token.
func CheckToken(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: "Your token is valid"})
}

// WithCORS wraps next in the CORS policy from cfg.
func WithCORS(cfg config.CORSConfig, next http.Handler) http.Handler {
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods(cfg.AllowedMethods),
		handlers.AllowedHeaders(cfg.AllowedHeaders),
		handlers.ExposedHeaders(cfg.ExposedHeaders),
		handlers.MaxAge(cfg.MaxAge),
	}
	if cfg.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	return handlers.CORS(corsOptions...)(next)
}
