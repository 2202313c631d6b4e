package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/omarica/internal/db"
	"github.com/erazemk/omarica/internal/exchange"
	"github.com/erazemk/omarica/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target, rejecting
// unknown fields.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// storeError maps store and pipeline errors to HTTP statuses. The fallback
// message covers unexpected internal errors; known errors surface their
// own text.
func storeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrLockerNotEmpty):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrLastAdmin):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, db.ErrTxTimeout):
		jsonError(w, http.StatusServiceUnavailable, "operation timed out, try again")
	case errors.Is(err, exchange.ErrInvalidData):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, exchange.ErrQREncoding):
		jsonError(w, http.StatusBadGateway, "qr image generation failed")
	default:
		slog.Error(fallback, "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}
