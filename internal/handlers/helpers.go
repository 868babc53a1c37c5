package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"media-gallery-platform/internal/models"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError maps domain errors onto HTTP statuses. Unrecognized errors
// are logged server-side and surface as an opaque 500.
func respondError(w http.ResponseWriter, err error) {
	var decline *models.DeclineError
	if errors.As(err, &decline) {
		respondJSON(w, http.StatusPaymentRequired, errorResponse{
			Error: decline.UserMessage(),
			Code:  string(decline.Category),
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrProfileNotFound),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrPaymentNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidPrice),
		errors.Is(err, models.ErrEmptyCart):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrAlreadyUnlocked),
		errors.Is(err, models.ErrDuplicateEntry):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotImplemented):
		respondJSON(w, http.StatusNotImplemented, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrVerificationTimeout):
		respondJSON(w, http.StatusAccepted, errorResponse{
			Error: "payment is still pending, check back later",
			Code:  "verification_timeout",
		})
	case errors.Is(err, models.ErrStoreUnavailable):
		log.Printf("store error: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service temporarily unavailable"})
	default:
		log.Printf("unhandled error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// urlParamInt parses a chi URL parameter as an integer.
func urlParamInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, models.ErrInvalidInput
	}
	return value, nil
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.ErrInvalidInput
	}
	return nil
}
