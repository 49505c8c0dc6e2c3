package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"handwerk-crm/go_backend/internal/chat"
)

func (h *Handlers) ChatRespond(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Der Anfrageinhalt ist kein gültiges JSON.")
		return
	}
	hasUser := false
	for _, m := range req.Messages {
		if m.Role == "user" && strings.TrimSpace(m.Content) != "" {
			hasUser = true
			break
		}
	}
	if !hasUser {
		writeError(w, http.StatusBadRequest, "Die Unterhaltung enthält keine Nachricht.")
		return
	}

	resp, err := h.Chat.Respond(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("chat respond")
		writeError(w, http.StatusBadGateway, "Der Assistent ist derzeit nicht erreichbar.")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
