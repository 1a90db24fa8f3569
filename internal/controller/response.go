package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("⚠️ failed to encode response:", err)
	}
}

// writeError maps validation errors to 400 and missing records to 404.
// Everything else is logged and reported as 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case appErrors.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case appErrors.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		log.Println("❌ request failed:", err)
		msg := "internal server error"
		var storeErr *appErrors.StoreWriteError
		if errors.As(err, &storeErr) {
			msg = "failed to write to store"
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if appErrors.IsValidation(err) {
			writeError(w, err)
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return false
	}
	return true
}
