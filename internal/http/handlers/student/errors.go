package student

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-api/internal/types"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

// NotFoundMessage is the body error for unknown and malformed ids.
const NotFoundMessage = "Student not found"

// writeError maps the error taxonomy onto HTTP:
//
//	*types.ValidationError              → 422 with the field breakdown
//	types.ErrInvalidIdentifier          → 404
//	types.ErrNotFound                   → 404
//	anything else (persistence failure) → 500 with failMsg
//
// Datastore details are logged here and never sent to the client.
func writeError(w http.ResponseWriter, err error, failMsg string) {
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		response.WriteJSON(w, http.StatusUnprocessableEntity, response.ValidationError(verr))
	case errors.Is(err, types.ErrInvalidIdentifier), errors.Is(err, types.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(NotFoundMessage))
	default:
		attrs := []any{slog.String("error", err.Error())}
		var perr *types.PersistenceError
		if errors.As(err, &perr) {
			attrs = append(attrs, slog.String("op", perr.Op))
		}
		slog.Error(failMsg, attrs...)
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(failMsg))
	}
}
