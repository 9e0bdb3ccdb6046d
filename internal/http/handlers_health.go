package httpapi

import "net/http"

// HandleHealth reports that the request path is reachable. It does not
// probe the database.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
