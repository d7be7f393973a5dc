package handler

import (
	"net/http"

	"github.com/evyataryagoni/netlookup/internal/inspector"
	"github.com/evyataryagoni/netlookup/internal/models"
	"github.com/evyataryagoni/netlookup/internal/service"
)

// MyIPHandler handles HTTP requests for the caller's own address
type MyIPHandler struct {
	service *service.MyIPLookup
}

// NewMyIPHandler creates a new self-lookup handler
func NewMyIPHandler(svc *service.MyIPLookup) *MyIPHandler {
	return &MyIPHandler{service: svc}
}

// Get handles GET /v1/my-ip
//
// Every request is answered from its own remote address, headers and
// screen query parameters. The body is a lookup state so clients can
// render it like the other lookups.
func (h *MyIPHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.LookupCaller(r.Context(), r.RemoteAddr, inspector.FromRequest(r))
	if err != nil {
		respondJSON(w, http.StatusBadGateway, models.LookupState[models.MyIPResult]{
			Status: models.StatusError,
			Error:  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, models.LookupState[models.MyIPResult]{
		Status: models.StatusSuccess,
		Data:   result,
	})
}

// Refresh handles POST /v1/my-ip/refresh
func (h *MyIPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.LookupCaller(r.Context(), r.RemoteAddr, inspector.FromRequest(r))
	if err != nil {
		respondLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
