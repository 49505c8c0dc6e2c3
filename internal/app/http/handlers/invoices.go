package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Der Anfrageinhalt ist kein gültiges JSON.")
		return
	}
	env := h.Registry.Dispatch(r.Context(), "create_invoice", args)
	writeEnvelope(w, env, http.StatusCreated)
}

func (h *Handlers) ListInvoices(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if q := r.URL.Query().Get("customerId"); q != "" {
		args["customerId"] = q
	}
	env := h.Registry.Dispatch(r.Context(), "get_invoices", args)
	writeEnvelope(w, env, http.StatusOK)
}

func (h *Handlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Store.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "invoice": inv})
}

func (h *Handlers) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Der Anfrageinhalt ist kein gültiges JSON.")
		return
	}
	args["id"] = chi.URLParam(r, "id")
	env := h.Registry.Dispatch(r.Context(), "update_invoice", args)
	writeEnvelope(w, env, http.StatusOK)
}

func (h *Handlers) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Store.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out, err := h.PDF.Invoice(inv)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	servePDF(w, fmt.Sprintf("Rechnung-%s.pdf", inv.InvoiceNumber), out)
}
