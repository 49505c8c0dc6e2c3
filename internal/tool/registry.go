package tool

import (
	"context"

	"handwerk-crm/go_backend/internal/domain/crm"
)

// Handler validates the argument map and performs exactly one store
// operation. Failures come back inside the envelope, never as a Go error.
type Handler func(ctx context.Context, store crm.Store, args map[string]any) Envelope

// Renderer turns a successful envelope into the Markdown summary the chat
// layer falls back to when the model calls a tool without narrating.
type Renderer func(env Envelope) string

// Definition describes one catalog entry. Parameters is a JSON-Schema
// object handed verbatim to the language model.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handle      Handler
	Render      Renderer
}

// Registry is the fixed catalog of CRM operations, consumed uniformly by
// the REST handlers, the MCP endpoint and the chat orchestrator.
type Registry struct {
	store  crm.Store
	defs   []Definition
	byName map[string]*Definition
}

func NewRegistry(store crm.Store) *Registry {
	r := &Registry{store: store, byName: make(map[string]*Definition)}
	r.register(
		createCustomerTool(),
		getCustomersTool(),
		updateCustomerTool(),
		createOfferTool(),
		getOffersTool(),
		updateOfferTool(),
		createInvoiceTool(),
		getInvoicesTool(),
		updateInvoiceTool(),
		createAppointmentTool(),
		getAppointmentsTool(),
	)
	return r
}

func (r *Registry) register(defs ...Definition) {
	r.defs = append(r.defs, defs...)
	for i := range r.defs {
		r.byName[r.defs[i].Name] = &r.defs[i]
	}
}

// Definitions returns the catalog in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// RenderFallback produces the deterministic chat summary for a tool
// result. Failure envelopes surface their German message unchanged.
func (r *Registry) RenderFallback(name string, env Envelope) string {
	if !env.Success {
		return env.Message
	}
	def, ok := r.byName[name]
	if !ok || def.Render == nil {
		return env.Message
	}
	return def.Render(env)
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func property(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}
