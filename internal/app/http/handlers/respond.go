package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"handwerk-crm/go_backend/internal/domain/crm"
	"handwerk-crm/go_backend/internal/tool"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// writeEnvelope maps a tool envelope onto a REST response: the diagnostic
// prefix decides the status code, the body is the envelope itself.
func writeEnvelope(w http.ResponseWriter, env tool.Envelope, okStatus int) {
	status := okStatus
	if !env.Success {
		switch {
		case strings.HasPrefix(env.Error, "not_found:"):
			status = http.StatusNotFound
		case env.Error == "":
			status = http.StatusInternalServerError
		default:
			status = http.StatusBadRequest
		}
	}
	writeJSON(w, status, env)
}

// writeStoreError handles errors from store calls that bypass the registry.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, crm.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Der Datensatz wurde nicht gefunden.")
		return
	}
	log.Error().Err(err).Msg("store failure")
	writeError(w, http.StatusInternalServerError, "Ein interner Fehler ist aufgetreten.")
}

// decodeArgs reads the request body as a flat argument object. An empty body
// yields an empty map.
func decodeArgs(r *http.Request) (map[string]any, error) {
	args := map[string]any{}
	if r.Body == nil {
		return args, nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&args); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	return args, nil
}
