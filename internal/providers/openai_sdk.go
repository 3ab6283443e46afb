package providers

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fae-dev/fae-core/internal/faeevents"
)

// OpenAISDKAdapter talks to the OpenAI API through go-openai's streaming
// client rather than a hand-rolled SSE loop, giving the "openai" profile a
// first-class path while every OpenAI-compatible-but-unofficial backend
// (ollama, deepseek, self-hosted gateways) still goes through
// GenericHTTPAdapter.
type OpenAISDKAdapter struct {
	client *openai.Client
}

// NewOpenAISDKAdapter wraps a configured go-openai client.
func NewOpenAISDKAdapter(client *openai.Client) *OpenAISDKAdapter {
	return &OpenAISDKAdapter{client: client}
}

func (a *OpenAISDKAdapter) Name() string     { return "openai" }
func (a *OpenAISDKAdapter) Profile() Profile { return ProfileFor("openai") }

func (a *OpenAISDKAdapter) Send(ctx context.Context, messages []Message, opts Options, tools []ToolSpec) <-chan faeevents.LlmEvent {
	out := make(chan faeevents.LlmEvent, 16)
	go a.run(ctx, messages, opts, tools, out)
	return out
}

func (a *OpenAISDKAdapter) run(ctx context.Context, messages []Message, opts Options, tools []ToolSpec, out chan faeevents.LlmEvent) {
	req := openai.ChatCompletionRequest{
		Model:       opts.Model,
		Stream:      true,
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		Stop:        opts.StopSequences,
	}
	for _, m := range messages {
		switch m.Role {
		case RoleTool:
			req.Messages = append(req.Messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    m.ToolResult,
				ToolCallID: m.ToolCallID,
			})
		default:
			req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Text})
		}
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	stream, err := a.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		emitError(out, fmt.Sprintf("openai: stream create failed: %v", err))
		return
	}
	defer stream.Close()

	counter := newCallIDCounter()
	callIDs := map[int]string{}
	out <- faeevents.StreamStart("", faeevents.NewModelRef(opts.Model))

	for {
		resp, err := stream.Recv()
		if err != nil {
			break
		}
		for _, choice := range resp.Choices {
			if choice.Delta.Content != "" {
				out <- faeevents.TextDelta(choice.Delta.Content)
			}
			for _, tc := range choice.Delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				id := tc.ID
				if id == "" {
					id = callIDs[idx]
					if id == "" {
						id = counter.next()
						callIDs[idx] = id
					}
				} else {
					callIDs[idx] = id
				}
				if tc.Function.Name != "" {
					out <- faeevents.ToolCallStart(id, tc.Function.Name)
				}
				if tc.Function.Arguments != "" {
					out <- faeevents.ToolCallArgsDelta(id, tc.Function.Arguments)
				}
			}
			if choice.FinishReason != "" {
				out <- faeevents.StreamEnd(mapFinishReason(string(choice.FinishReason)))
				for _, id := range callIDs {
					out <- faeevents.ToolCallEnd(id)
				}
			}
		}
	}
	close(out)
}

var _ Adapter = (*OpenAISDKAdapter)(nil)
