package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"handwerk-crm/go_backend/internal/app/config"
	"handwerk-crm/go_backend/internal/infra/db/memstore"
	"handwerk-crm/go_backend/internal/tool"
)

// fakeOpenAI serves canned chat completions in order and records the
// requests it received.
type fakeOpenAI struct {
	t         *testing.T
	responses []openAIChatResponse
	requests  []openAIChatRequest
}

func (f *fakeOpenAI) handler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		f.t.Errorf("unexpected path: %s", r.URL.Path)
		http.NotFound(w, r)
		return
	}
	var req openAIChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("decode request: %v", err)
	}
	f.requests = append(f.requests, req)
	if len(f.responses) == 0 {
		f.t.Error("no canned response left")
		http.Error(w, "exhausted", http.StatusInternalServerError)
		return
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func textResponse(content string) openAIChatResponse {
	var resp openAIChatResponse
	resp.Choices = append(resp.Choices, struct {
		Message openAIChatMessage `json:"message"`
	}{Message: openAIChatMessage{Role: "assistant", Content: content}})
	resp.Usage = openAIUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	return resp
}

func toolCallResponse(id, name, arguments string) openAIChatResponse {
	var resp openAIChatResponse
	resp.Choices = append(resp.Choices, struct {
		Message openAIChatMessage `json:"message"`
	}{Message: openAIChatMessage{
		Role: "assistant",
		ToolCalls: []openAIToolCall{{
			ID:       id,
			Type:     "function",
			Function: openAIFunctionCall{Name: name, Arguments: arguments},
		}},
	}})
	resp.Usage = openAIUsage{PromptTokens: 20, CompletionTokens: 8, TotalTokens: 28}
	return resp
}

func newTestService(t *testing.T, fake *fakeOpenAI) (*Service, *tool.Registry) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	registry := tool.NewRegistry(memstore.New())
	cfg := config.Config{
		OpenAIBaseURL: srv.URL,
		OpenAIAPIKey:  "test-key",
		OpenAIModel:   "gpt-4o-mini",
	}
	return New(cfg, srv.Client(), registry), registry
}

func TestRespondPlainText(t *testing.T) {
	t.Parallel()

	fake := &fakeOpenAI{t: t, responses: []openAIChatResponse{
		textResponse("Gerne, womit kann ich helfen?"),
	}}
	svc, _ := newTestService(t, fake)

	resp, err := svc.Respond(context.Background(), Request{Messages: []Message{
		{Role: "user", Content: "Hallo"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "Gerne, womit kann ich helfen?" {
		t.Errorf("unexpected content: %q", resp.Content)
	}
	if len(resp.ToolResults) != 0 {
		t.Errorf("expected no tool results, got %d", len(resp.ToolResults))
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}

	// The model must have been offered the full catalog.
	if len(fake.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(fake.requests))
	}
	if len(fake.requests[0].Tools) != 11 {
		t.Errorf("expected 11 tools in the request, got %d", len(fake.requests[0].Tools))
	}
	if fake.requests[0].Messages[0].Role != "system" {
		t.Error("first message must be the system prompt")
	}
}

func TestRespondExecutesToolAndSynthesizesSummary(t *testing.T) {
	t.Parallel()

	fake := &fakeOpenAI{t: t, responses: []openAIChatResponse{
		toolCallResponse("call_1", "create_customer", `{"firstName":"Max","lastName":"Mustermann"}`),
		textResponse(""), // model stays silent after the tool round
	}}
	svc, registry := newTestService(t, fake)

	resp, err := svc.Respond(context.Background(), Request{Messages: []Message{
		{Role: "user", Content: "Lege bitte Max Mustermann als Kunden an."},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.ToolResults) != 1 {
		t.Fatalf("expected 1 tool result, got %d", len(resp.ToolResults))
	}
	tr := resp.ToolResults[0]
	if tr.Tool != "create_customer" || !tr.Result.Success {
		t.Fatalf("unexpected tool result: %+v", tr)
	}
	if !strings.Contains(resp.Content, "Kunde angelegt") || !strings.Contains(resp.Content, "Max Mustermann") {
		t.Errorf("expected templated summary, got %q", resp.Content)
	}

	// The customer was actually written.
	env := registry.Dispatch(context.Background(), "get_customers", nil)
	if len(env.Customers) != 1 {
		t.Fatalf("expected the customer to be persisted, got %d", len(env.Customers))
	}

	// Second round must carry the tool envelope back to the model.
	if len(fake.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(fake.requests))
	}
	second := fake.requests[1].Messages
	last := second[len(second)-1]
	if last.Role != "tool" || last.ToolCallID != "call_1" {
		t.Errorf("expected a tool message for call_1, got %+v", last)
	}
	if !strings.Contains(last.Content, `"success":true`) {
		t.Errorf("tool message must carry the envelope, got %q", last.Content)
	}
}

func TestRespondKeepsModelTextOverTemplate(t *testing.T) {
	t.Parallel()

	fake := &fakeOpenAI{t: t, responses: []openAIChatResponse{
		toolCallResponse("call_1", "get_customers", `{}`),
		textResponse("Aktuell sind keine Kunden erfasst."),
	}}
	svc, _ := newTestService(t, fake)

	resp, err := svc.Respond(context.Background(), Request{Messages: []Message{
		{Role: "user", Content: "Welche Kunden haben wir?"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "Aktuell sind keine Kunden erfasst." {
		t.Errorf("model narration must win over the template, got %q", resp.Content)
	}
}

func TestRespondSurfacesToolFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeOpenAI{t: t, responses: []openAIChatResponse{
		toolCallResponse("call_1", "create_invoice", `{"offerId":"does-not-exist"}`),
		textResponse(""),
	}}
	svc, _ := newTestService(t, fake)

	resp, err := svc.Respond(context.Background(), Request{Messages: []Message{
		{Role: "user", Content: "Erstelle die Rechnung."},
	}})
	if err != nil {
		t.Fatalf("tool failures must not become transport errors: %v", err)
	}
	tr := resp.ToolResults[0]
	if tr.Result.Success {
		t.Fatal("expected a failure envelope")
	}
	if !strings.Contains(resp.Content, "nicht gefunden") {
		t.Errorf("failure message must surface in the reply, got %q", resp.Content)
	}
}

func TestRespondInvalidToolArguments(t *testing.T) {
	t.Parallel()

	fake := &fakeOpenAI{t: t, responses: []openAIChatResponse{
		toolCallResponse("call_1", "create_customer", `{"firstName": broken`),
		textResponse(""),
	}}
	svc, registry := newTestService(t, fake)

	resp, err := svc.Respond(context.Background(), Request{Messages: []Message{
		{Role: "user", Content: "Lege einen Kunden an."},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ToolResults[0].Result.Success {
		t.Fatal("unreadable arguments must fail")
	}
	if env := registry.Dispatch(context.Background(), "get_customers", nil); len(env.Customers) != 0 {
		t.Fatal("unreadable arguments must not write")
	}
}
