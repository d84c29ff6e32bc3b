package handlers

import (
	"encoding/json"
	"net/http"
)

// Health handles GET /health for load balancer probes.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "agenda-backend",
	})
}
