package handler

import (
	"net/http"

	"github.com/evyataryagoni/netlookup/internal/service"
)

// IPHandler handles HTTP requests for IP lookups
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Parse HTTP requests (query parameters)
//   - Call the orchestrator
//   - Format HTTP responses (JSON) and status codes
type IPHandler struct {
	service *service.IPLookup
}

// NewIPHandler creates a new IP handler with the given orchestrator
func NewIPHandler(svc *service.IPLookup) *IPHandler {
	return &IPHandler{service: svc}
}

// Lookup handles GET /v1/ip?ip=<ip>
//
// 200 with the IP details, 400 for invalid input, 502 when the
// network-info source fails.
func (h *IPHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.Trigger(r.Context(), r.URL.Query().Get("ip"))
	if err != nil {
		respondLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// State handles GET /v1/ip/state
func (h *IPHandler) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.State())
}
