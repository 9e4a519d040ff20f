package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/montonitech/client-scheduling/internal/postal"
	"github.com/montonitech/client-scheduling/internal/scheduling"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeDomainError maps scheduling sentinel errors onto HTTP statuses.
// Validation problems are 400, misses 404, conflicts 409, anything
// else is a transport failure surfaced as 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "missing_fields", err.Error())
	case errors.Is(err, scheduling.ErrMissingAddress):
		writeError(w, http.StatusBadRequest, "missing_address", err.Error())
	case errors.Is(err, scheduling.ErrInvalidPhone):
		writeError(w, http.StatusBadRequest, "invalid_phone", err.Error())
	case errors.Is(err, scheduling.ErrInvalidCEP):
		writeError(w, http.StatusBadRequest, "invalid_cep", err.Error())
	case errors.Is(err, scheduling.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, scheduling.ErrTimeNotInCatalog):
		writeError(w, http.StatusBadRequest, "invalid_time", err.Error())
	case errors.Is(err, scheduling.ErrInvalidMeetLink):
		writeError(w, http.StatusBadRequest, "invalid_meet_link", err.Error())
	case errors.Is(err, scheduling.ErrClientNotFound):
		writeError(w, http.StatusNotFound, "not_registered", err.Error())
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, scheduling.ErrClientExists):
		writeError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, scheduling.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.Is(err, scheduling.ErrSlotBusy):
		writeError(w, http.StatusConflict, "slot_busy", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writePostalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postal.ErrInvalidCEP):
		writeError(w, http.StatusBadRequest, "invalid_cep", err.Error())
	case errors.Is(err, postal.ErrNotFound):
		writeError(w, http.StatusNotFound, "cep_not_found", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "postal_lookup_failed", err.Error())
	}
}
