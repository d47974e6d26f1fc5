package handlers

import (
	"errors"
	"net/http"

	"planner-project/backend/schedule-service/logging"
	"planner-project/backend/schedule-service/models"
)

// writeDomainError maps domain error kinds onto HTTP status codes. Anything
// unrecognized is an internal error and gets logged.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	var transitionErr *models.InvalidTransitionError
	var conflictErr *models.ConflictError
	var permissionErr *models.PermissionDeniedError
	var notFoundErr *models.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Message, http.StatusBadRequest)
	case errors.As(err, &transitionErr):
		http.Error(w, transitionErr.Message, http.StatusBadRequest)
	case errors.As(err, &conflictErr):
		http.Error(w, conflictErr.Message, http.StatusConflict)
	case errors.As(err, &permissionErr):
		http.Error(w, permissionErr.Message, http.StatusForbidden)
	case errors.As(err, &notFoundErr):
		http.Error(w, notFoundErr.Error(), http.StatusNotFound)
	default:
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: Unhandled error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
