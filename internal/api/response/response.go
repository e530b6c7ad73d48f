package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/semmidev/custos/internal/domain"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteDomainError maps the error taxonomy onto HTTP statuses. The
// diagnostic text goes into the body for operator debugging.
func WriteDomainError(w http.ResponseWriter, err error) {
	var toolErr *domain.ToolError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotDue),
		errors.Is(err, domain.ErrUnsupportedEngine),
		errors.Is(err, domain.ErrUnknownInterval):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyInProgress):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &toolErr):
		WriteError(w, http.StatusInternalServerError, toolErr.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
