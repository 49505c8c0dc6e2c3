package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"handwerk-crm/go_backend/internal/tool"
)

// Customer writes run through the same registry handlers the assistant
// uses, so both surfaces validate and respond identically.

func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Der Anfrageinhalt ist kein gültiges JSON.")
		return
	}
	env := h.Registry.Dispatch(r.Context(), "create_customer", args)
	writeEnvelope(w, env, http.StatusCreated)
}

func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if q := r.URL.Query().Get("search"); q != "" {
		args["search"] = q
	}
	env := h.Registry.Dispatch(r.Context(), "get_customers", args)
	writeEnvelope(w, env, http.StatusOK)
}

func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool.Envelope{Success: true, Customer: c})
}

func (h *Handlers) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Der Anfrageinhalt ist kein gültiges JSON.")
		return
	}
	args["id"] = chi.URLParam(r, "id")
	env := h.Registry.Dispatch(r.Context(), "update_customer", args)
	writeEnvelope(w, env, http.StatusOK)
}

func (h *Handlers) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool.Envelope{Success: true, Message: "Der Kunde wurde gelöscht."})
}
