package handler

import (
	"net/http"

	"github.com/evyataryagoni/netlookup/internal/service"
)

// DomainHandler handles HTTP requests for domain lookups
type DomainHandler struct {
	service *service.DomainLookup
}

// NewDomainHandler creates a new domain handler
func NewDomainHandler(svc *service.DomainLookup) *DomainHandler {
	return &DomainHandler{service: svc}
}

// Lookup handles GET /v1/domain?domain=<name>
//
// Synthetic records are served with 200 like genuine ones; clients tell
// them apart by the "synthetic" field.
func (h *DomainHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.Trigger(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		respondLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// State handles GET /v1/domain/state
func (h *DomainHandler) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.State())
}
