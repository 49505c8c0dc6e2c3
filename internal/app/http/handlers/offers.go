package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) CreateOffer(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Der Anfrageinhalt ist kein gültiges JSON.")
		return
	}
	env := h.Registry.Dispatch(r.Context(), "create_offer", args)
	writeEnvelope(w, env, http.StatusCreated)
}

func (h *Handlers) ListOffers(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if q := r.URL.Query().Get("customerId"); q != "" {
		args["customerId"] = q
	}
	env := h.Registry.Dispatch(r.Context(), "get_offers", args)
	writeEnvelope(w, env, http.StatusOK)
}

func (h *Handlers) GetOffer(w http.ResponseWriter, r *http.Request) {
	o, err := h.Store.GetOffer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "offer": o})
}

func (h *Handlers) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Der Anfrageinhalt ist kein gültiges JSON.")
		return
	}
	args["id"] = chi.URLParam(r, "id")
	env := h.Registry.Dispatch(r.Context(), "update_offer", args)
	writeEnvelope(w, env, http.StatusOK)
}

func (h *Handlers) OfferPDF(w http.ResponseWriter, r *http.Request) {
	o, err := h.Store.GetOffer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out, err := h.PDF.Offer(o)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	servePDF(w, fmt.Sprintf("Angebot-%s.pdf", o.OfferNumber), out)
}

func servePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
