package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/TinyGandalf/FullstackOpen-part4/internal/apperr"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondAppError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.Conflict:
		respondError(w, http.StatusBadRequest, err.Error())
	case apperr.Authentication, apperr.Authorization:
		respondError(w, http.StatusUnauthorized, err.Error())
	case apperr.NotFound:
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
