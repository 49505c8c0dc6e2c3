package tool

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Dispatch routes a (name, arguments) pair to the matching catalog entry.
// Every caller — chat orchestrator, REST handler or MCP client — goes
// through here, so an unknown name or invalid input can never escape as a
// transport failure.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) Envelope {
	def, ok := r.byName[name]
	if !ok {
		log.Warn().Str("tool", name).Msg("unknown tool requested")
		return failure(
			fmt.Sprintf("Unbekanntes Werkzeug: %s", name),
			fmt.Sprintf("unknown_tool: %s", name),
		)
	}
	if args == nil {
		args = map[string]any{}
	}

	env := def.Handle(ctx, r.store, args)
	if env.Success {
		log.Debug().Str("tool", name).Msg("tool call succeeded")
	} else {
		log.Warn().Str("tool", name).Str("error", env.Error).Msg("tool call failed")
	}
	return env
}
