package v1

import (
	"github.com/go-chi/chi/v5"

	"github.com/evyataryagoni/netlookup/internal/handler"
)

// Handlers groups the handlers mounted under /v1
type Handlers struct {
	IP      *handler.IPHandler
	Domain  *handler.DomainHandler
	MyIP    *handler.MyIPHandler
	History *handler.HistoryHandler
}

// SetupRoutes configures all v1 API routes
// This function is called by the main router to setup /v1/* endpoints
func SetupRoutes(h Handlers) chi.Router {
	r := chi.NewRouter()

	// GET /v1/ip?ip=<ip>
	r.Get("/ip", h.IP.Lookup)
	r.Get("/ip/state", h.IP.State)

	// GET /v1/domain?domain=<name>
	r.Get("/domain", h.Domain.Lookup)
	r.Get("/domain/state", h.Domain.State)

	r.Get("/my-ip", h.MyIP.Get)
	r.Post("/my-ip/refresh", h.MyIP.Refresh)

	// GET /v1/history/ip, /v1/history/domain
	r.Get("/history/{type}", h.History.List)

	return r
}
