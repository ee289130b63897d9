package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/api/shared"
)

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context. The auth middleware is responsible for putting it there.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// requireUserAndTaskID extracts the user ID from context and the task ID
// from the URL path, writing an error response on failure.
func requireUserAndTaskID(w http.ResponseWriter, r *http.Request) (userID, taskID uuid.UUID, ok bool) {
	userID, ok = getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, taskID, true
}
