package httpapi

import (
	"context"
	"net/http"
)

// HandleStats returns the current proposition count. A failed query is
// reported as a zero count with status 200.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.statsTimeout)
	defer cancel()

	count, err := h.store.CountPropositions(ctx)
	if err != nil {
		// Degrade to zero rather than fail the request.
		h.logger.Warn().Err(err).Msg("stats query failed, reporting zero")
		count = 0
	}

	h.logger.Debug().Int64("proposition_count", count).Msg("stats")

	writeJSON(w, http.StatusOK, StatsResponse{PropositionCount: count})
}
