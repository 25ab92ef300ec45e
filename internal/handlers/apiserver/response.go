package apiserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"spur-go/internal/services"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of responses that only carry a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSONResponse sends data as a JSON response.
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already out; all we can do is log.
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// writeJSONError sends an ErrorResponse.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{Error: message})
}

// domainErrorStatus maps the services' conflict errors to HTTP status codes.
var domainErrorStatus = []struct {
	err    error
	status int
}{
	{services.ErrSelfFriendship, http.StatusUnprocessableEntity},
	{services.ErrSelfReply, http.StatusUnprocessableEntity},
	{services.ErrArchivedParent, http.StatusUnprocessableEntity},
	{services.ErrNonexistentUser, http.StatusNotFound},
	{services.ErrPostNotFound, http.StatusNotFound},
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrAlreadyFriends, http.StatusConflict},
	{services.ErrAlreadyRequested, http.StatusConflict},
	{services.ErrDuplicateReply, http.StatusConflict},
	{services.ErrDuplicateUsername, http.StatusConflict},
	{services.ErrDuplicateEmail, http.StatusConflict},
	{services.ErrDeletedParent, http.StatusGone},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
}

// writeServiceError reports err to the client. Domain conflicts keep their
// message; anything else is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range domainErrorStatus {
		if errors.Is(err, m.err) {
			writeJSONError(w, m.err.Error(), m.status)
			return
		}
	}
	log.Printf("Internal error handling %s %s: %v", r.Method, r.URL.Path, err)
	writeJSONError(w, "Internal server error", http.StatusInternalServerError)
}

// decodeJSONBody decodes the request body into dst, rejecting unknown fields.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
