// Package chat bridges free-form user messages to CRM tool invocations
// via a language model and folds the results back into a German reply.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"handwerk-crm/go_backend/internal/app/config"
	"handwerk-crm/go_backend/internal/tool"
)

const systemPrompt = "Du bist der Assistent einer CRM-Software für Handwerksbetriebe (Maler, Garten- und Landschaftsbau). " +
	"Du verwaltest Kunden, Angebote, Rechnungen und Termine über die bereitgestellten Werkzeuge. " +
	"Nutze für jede Anlage oder Abfrage das passende Werkzeug und erfinde keine Daten. " +
	"Antworte auf Deutsch, kurz und sachlich. Beträge nennst du mit zwei Nachkommastellen und Euro-Zeichen."

// maxToolRounds bounds the model/tool loop of a single chat turn.
const maxToolRounds = 4

type Service struct {
	Cfg      config.Config
	HTTP     *http.Client
	Registry *tool.Registry
}

func New(cfg config.Config, httpClient *http.Client, registry *tool.Registry) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{Cfg: cfg, HTTP: httpClient, Registry: registry}
}

// Respond runs one request-response cycle: the model sees the full tool
// catalog, may call tools in several rounds, and produces the final text.
// When it calls tools without narrating, the registered render template
// for the last tool supplies the reply.
func (s *Service) Respond(ctx context.Context, req Request) (*Response, error) {
	msgs := make([]openAIChatMessage, 0, len(req.Messages)+1)
	msgs = append(msgs, openAIChatMessage{Role: "system", Content: systemPrompt})
	for _, m := range req.Messages {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != "assistant" {
			role = "user"
		}
		msgs = append(msgs, openAIChatMessage{Role: role, Content: m.Content})
	}

	tools := s.catalogTools()
	var results []ToolResult
	var usage Usage

	for round := 0; round < maxToolRounds; round++ {
		out, err := s.complete(ctx, openAIChatRequest{
			Model:     s.Cfg.OpenAIModel,
			Messages:  msgs,
			Tools:     tools,
			MaxTokens: 700,
		})
		if err != nil {
			return nil, err
		}
		usage.add(out.Usage)
		if len(out.Choices) == 0 {
			return nil, errors.New("empty openai response")
		}

		msg := out.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return &Response{
				Content:     s.finalContent(msg.Content, results),
				ToolResults: results,
				Usage:       usage,
			}, nil
		}

		msgs = append(msgs, msg)
		for _, tc := range msg.ToolCalls {
			env, args := s.executeToolCall(ctx, tc)
			results = append(results, ToolResult{Tool: tc.Function.Name, Args: args, Result: env})
			payload, err := json.Marshal(env)
			if err != nil {
				return nil, fmt.Errorf("marshal tool envelope: %w", err)
			}
			msgs = append(msgs, openAIChatMessage{
				Role:       "tool",
				Content:    string(payload),
				ToolCallID: tc.ID,
			})
		}
	}

	// Round budget exhausted; fall back to the templated summary.
	return &Response{
		Content:     s.finalContent("", results),
		ToolResults: results,
		Usage:       usage,
	}, nil
}

func (s *Service) executeToolCall(ctx context.Context, tc openAIToolCall) (tool.Envelope, map[string]any) {
	args := map[string]any{}
	if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			log.Warn().Str("tool", tc.Function.Name).Err(err).Msg("chat: unreadable tool arguments")
			return tool.Envelope{
				Success: false,
				Message: "Die Angaben für diese Aktion konnten nicht gelesen werden.",
				Error:   "validation: tool arguments are not valid JSON",
			}, nil
		}
	}
	return s.Registry.Dispatch(ctx, tc.Function.Name, args), args
}

func (s *Service) finalContent(content string, results []ToolResult) string {
	content = strings.TrimSpace(content)
	if content != "" || len(results) == 0 {
		return content
	}
	last := results[len(results)-1]
	return s.Registry.RenderFallback(last.Tool, last.Result)
}

func (s *Service) catalogTools() []openAITool {
	defs := s.Registry.Definitions()
	out := make([]openAITool, 0, len(defs))
	for _, def := range defs {
		out = append(out, openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}

func (s *Service) complete(ctx context.Context, payload openAIChatRequest) (*openAIChatResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	urlStr := strings.TrimRight(s.Cfg.OpenAIBaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.Cfg.OpenAIAPIKey)

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
