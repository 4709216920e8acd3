package handlers

import "net/http"

type healthResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
}

// Health reports liveness. It does not touch the store.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Status: "up"})
}
