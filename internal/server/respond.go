package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"dealdesk/pkg/types"
)

type errorPayload struct {
	Error string `json:"error"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

// respondError maps the error taxonomy onto status codes: NotFound 404,
// NotAuthorized 403, validation 400, everything else (upstream) 500. The
// message passes through verbatim.
func (s *Service) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, types.ErrUserNotFound),
		errors.Is(err, types.ErrListingNotFound),
		errors.Is(err, types.ErrDocumentNotFound),
		errors.Is(err, types.ErrProgressNotFound):
		status = http.StatusNotFound
	}

	s.respondJSON(w, status, errorPayload{Error: err.Error()})
}

func (s *Service) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return types.NewValidationError("body", "malformed JSON")
	}
	return nil
}
