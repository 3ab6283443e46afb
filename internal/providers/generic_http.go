package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fae-dev/fae-core/internal/faeerrors"
	"github.com/fae-dev/fae-core/internal/faeevents"
	"github.com/fae-dev/fae-core/internal/faesse"
)

// GenericHTTPAdapter speaks the OpenAI-compatible chat completions wire
// format over SSE. It is used directly for any profile whose
// ToolCallFormat is ToolCallStandard or ToolCallUnsupported and which has
// no dedicated SDK-backed adapter (ollama, deepseek, and any unrecognized
// provider via the OpenAI-compatible fallback profile).
type GenericHTTPAdapter struct {
	name    string
	profile Profile
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGenericHTTPAdapter builds an adapter for providerName using
// ProfileFor(providerName) to resolve wire-format quirks.
func NewGenericHTTPAdapter(providerName, baseURL, apiKey string, client *http.Client) *GenericHTTPAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &GenericHTTPAdapter{
		name:    providerName,
		profile: ProfileFor(providerName),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (a *GenericHTTPAdapter) Name() string      { return a.name }
func (a *GenericHTTPAdapter) Profile() Profile  { return a.profile }

func (a *GenericHTTPAdapter) buildBody(messages []Message, opts Options, tools []ToolSpec) map[string]any {
	body := map[string]any{"model": opts.Model, "stream": true}

	var wire []map[string]any
	for _, m := range messages {
		switch m.Role {
		case RoleTool:
			wire = append(wire, map[string]any{"role": "tool", "tool_call_id": m.ToolCallID, "content": m.ToolResult})
		default:
			wire = append(wire, map[string]any{"role": string(m.Role), "content": m.Text})
		}
	}
	body["messages"] = wire

	if opts.MaxTokens > 0 {
		body[a.profile.MaxTokensField] = opts.MaxTokens
	}
	if opts.Temperature != 0 {
		body["temperature"] = opts.Temperature
	}
	if len(opts.StopSequences) > 0 && a.profile.StopSequenceField != "" {
		body[a.profile.StopSequenceField] = opts.StopSequences
	}
	if len(tools) > 0 && a.profile.ToolCallFormat != ToolCallUnsupported {
		var specs []map[string]any
		for _, t := range tools {
			specs = append(specs, map[string]any{
				"type": "function",
				"function": map[string]any{
					"name":        t.Name,
					"description": t.Description,
					"parameters":  t.Parameters,
				},
			})
		}
		body["tools"] = specs
	}
	if a.profile.SupportsStreamUsage {
		body["stream_options"] = map[string]any{"include_usage": true}
	}
	return body
}

func (a *GenericHTTPAdapter) path() string {
	if a.profile.APIPathOverride != "" {
		return a.profile.APIPathOverride
	}
	return "/v1/chat/completions"
}

// Send issues the HTTP request and normalizes the OpenAI-compatible
// chat-completion chunk stream into faeevents.LlmEvent. A per-stream
// callIDCounter synthesizes tool call_ids for chunks that omit one.
func (a *GenericHTTPAdapter) Send(ctx context.Context, messages []Message, opts Options, tools []ToolSpec) <-chan faeevents.LlmEvent {
	out := make(chan faeevents.LlmEvent, 16)
	go a.run(ctx, messages, opts, tools, out)
	return out
}

func (a *GenericHTTPAdapter) run(ctx context.Context, messages []Message, opts Options, tools []ToolSpec, out chan faeevents.LlmEvent) {
	body, err := json.Marshal(a.buildBody(messages, opts, tools))
	if err != nil {
		emitError(out, fmt.Sprintf("request encoding failed: %v", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+a.path(), bytes.NewReader(body))
	if err != nil {
		emitError(out, fmt.Sprintf("request construction failed: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		emitError(out, fmt.Sprintf("transport error: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		kind := faeerrors.ClassifyStatusCode(resp.StatusCode)
		emitError(out, fmt.Sprintf("%s: http status %d", kind, resp.StatusCode))
		return
	}

	counter := newCallIDCounter()
	callIDs := map[int]string{}
	out <- faeevents.StreamStart("", faeevents.NewModelRef(opts.Model))

	parser := faesse.NewLineParser()
	reader := bufio.NewReader(resp.Body)
	buf := make([]byte, 4096)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			for _, ev := range parser.Push(buf[:n]) {
				if ev.IsDone() {
					continue
				}
				a.handleChunk(ev.Data, callIDs, counter, out)
			}
		}
		if readErr != nil {
			break
		}
	}
	if ev, ok := parser.Flush(); ok && !ev.IsDone() {
		a.handleChunk(ev.Data, callIDs, counter, out)
	}
	close(out)
}

func (a *GenericHTTPAdapter) handleChunk(data string, callIDs map[int]string, counter *callIDCounter, out chan faeevents.LlmEvent) {
	var chunk struct {
		Choices []struct {
			Index int `json:"index"`
			Delta struct {
				Content   string `json:"content"`
				Reasoning string `json:"reasoning_content"`
				ToolCalls []struct {
					Index    int    `json:"index"`
					ID       string `json:"id"`
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"delta"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return
	}
	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			out <- faeevents.TextDelta(choice.Delta.Content)
		}
		if choice.Delta.Reasoning != "" {
			out <- faeevents.ThinkingDelta(choice.Delta.Reasoning)
		}
		for _, tc := range choice.Delta.ToolCalls {
			id := tc.ID
			if id == "" {
				id, _ = callIDs[tc.Index]
				if id == "" {
					id = counter.next()
					callIDs[tc.Index] = id
				}
			} else {
				callIDs[tc.Index] = id
			}
			if tc.Function.Name != "" {
				out <- faeevents.ToolCallStart(id, tc.Function.Name)
			}
			if tc.Function.Arguments != "" {
				out <- faeevents.ToolCallArgsDelta(id, tc.Function.Arguments)
			}
		}
		if choice.FinishReason != "" {
			out <- faeevents.StreamEnd(mapFinishReason(choice.FinishReason))
			for _, id := range callIDs {
				out <- faeevents.ToolCallEnd(id)
			}
		}
	}
}

func mapFinishReason(s string) faeevents.FinishReason {
	switch s {
	case "stop":
		return faeevents.FinishStop
	case "length":
		return faeevents.FinishLength
	case "tool_calls", "function_call":
		return faeevents.FinishToolCalls
	case "content_filter":
		return faeevents.FinishContentFilter
	default:
		return faeevents.FinishOther
	}
}

var _ Adapter = (*GenericHTTPAdapter)(nil)
