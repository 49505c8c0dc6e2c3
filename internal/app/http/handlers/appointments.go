package handlers

import "net/http"

func (h *Handlers) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	args, err := decodeArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Der Anfrageinhalt ist kein gültiges JSON.")
		return
	}
	env := h.Registry.Dispatch(r.Context(), "create_appointment", args)
	writeEnvelope(w, env, http.StatusCreated)
}

func (h *Handlers) ListAppointments(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if q := r.URL.Query().Get("customerId"); q != "" {
		args["customerId"] = q
	}
	env := h.Registry.Dispatch(r.Context(), "get_appointments", args)
	writeEnvelope(w, env, http.StatusOK)
}
