package providers

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fae-dev/fae-core/internal/faeevents"
)

// Role identifies a message author in a completion request.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is one turn of conversation sent to a provider.
type Message struct {
	Role       Role
	Text       string
	ToolCallID string
	ToolResult string
}

// ToolSpec is a tool definition offered to the provider for this request.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  any
}

// Options carries per-request knobs the adapter maps onto each profile's
// field names.
type Options struct {
	Model         string
	MaxTokens     int
	Temperature   float64
	StopSequences []string
}

// Adapter is the uniform streaming capability every concrete provider
// implements. Transport-level retry is not the adapter's job: it returns
// (or emits as a StreamError) the first permanent error encountered, and
// lets the caller's circuit breaker and retry policy decide what to do
// next.
type Adapter interface {
	Name() string
	Profile() Profile
	Send(ctx context.Context, messages []Message, opts Options, tools []ToolSpec) <-chan faeevents.LlmEvent
}

// callIDCounter synthesizes call_ids for providers (like Ollama or
// OpenAI's o1 family) that don't echo one back. One counter instance is
// meant to live for the duration of a single stream.
type callIDCounter struct {
	n atomic.Int64
}

func newCallIDCounter() *callIDCounter { return &callIDCounter{} }

func (c *callIDCounter) next() string {
	return fmt.Sprintf("call_%d", c.n.Add(1))
}

// emitError pushes a StreamError followed by a synthesized StreamEnd with
// finish reason Other, then closes
// the channel.
func emitError(out chan<- faeevents.LlmEvent, errMsg string) {
	out <- faeevents.StreamError(errMsg)
	out <- faeevents.StreamEnd(faeevents.FinishOther)
	close(out)
}
