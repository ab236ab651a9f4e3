package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are committed; an encode failure here is unrecoverable.
	_ = json.NewEncoder(w).Encode(payload)
}
