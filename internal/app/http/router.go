package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"handwerk-crm/go_backend/internal/app/config"
	"handwerk-crm/go_backend/internal/app/http/handlers"
	"handwerk-crm/go_backend/internal/app/http/middleware"
)

func NewRouter(cfg config.Config, h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.InternalAuth(cfg.InternalToken))

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", h.CreateCustomer)
			r.Get("/", h.ListCustomers)
			r.Get("/{id}", h.GetCustomer)
			r.Put("/{id}", h.UpdateCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
		})

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", h.CreateOffer)
			r.Get("/", h.ListOffers)
			r.Get("/{id}", h.GetOffer)
			r.Put("/{id}", h.UpdateOffer)
			r.Get("/{id}/pdf", h.OfferPDF)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", h.CreateInvoice)
			r.Get("/", h.ListInvoices)
			r.Get("/{id}", h.GetInvoice)
			r.Put("/{id}", h.UpdateInvoice)
			r.Get("/{id}/pdf", h.InvoicePDF)
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", h.CreateAppointment)
			r.Get("/", h.ListAppointments)
		})

		r.Post("/chat", h.ChatRespond)
		r.Post("/mcp", h.MCP)
	})

	return r
}
