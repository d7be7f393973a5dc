package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evyataryagoni/netlookup/internal/history"
	"github.com/evyataryagoni/netlookup/internal/models"
)

// HistoryHandler serves the recent-lookup lists
type HistoryHandler struct {
	history *history.Store
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(h *history.Store) *HistoryHandler {
	return &HistoryHandler{history: h}
}

// List handles GET /v1/history/{type} where type is "ip" or "domain".
// Items are newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "type")
	ns, ok := history.NamespaceFor(models.LookupType(kind))
	if !ok {
		respondError(w, http.StatusBadRequest, "History type must be 'ip' or 'domain'")
		return
	}
	respondJSON(w, http.StatusOK, h.history.ReadAll(r.Context(), ns))
}
