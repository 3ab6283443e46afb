// Package accumulator collects a provider's LlmEvent stream into a single
// completed turn: full text, thinking output, and reassembled tool calls in
// deterministic start order.
package accumulator

import "github.com/fae-dev/fae-core/internal/faeevents"

// ToolCall is a completed tool call extracted from the event stream, with
// its JSON arguments fully reassembled from streaming deltas.
type ToolCall struct {
	CallID        string
	FunctionName  string
	ArgumentsJSON string
}

// Turn is the result of accumulating one complete provider round-trip.
type Turn struct {
	Text         string
	Thinking     string
	ToolCalls    []ToolCall
	FinishReason faeevents.FinishReason
	Error        string
	// Partial is set when the stream ended via StreamError while text or
	// tool-call buffers were non-empty; downstream consumers treat it as
	// advisory, not authoritative, per the reference behavior.
	Partial bool
}

type inProgress struct {
	callID       string
	functionName string
	argsBuf      string
}

// Accumulator consumes LlmEvents one at a time via Push and produces a Turn
// via Finish. In-progress tool calls are tracked in a map keyed by call_id
// with a parallel insertion-ordered slice of call_ids, so completion
// ordering never depends on map iteration order.
type Accumulator struct {
	text     string
	thinking string

	inProgress map[string]*inProgress
	callOrder  []string
	completed  []ToolCall

	finishReason faeevents.FinishReason
	haveFinish   bool
	errMsg       string
}

// New creates an empty accumulator.
func New() *Accumulator {
	return &Accumulator{inProgress: make(map[string]*inProgress)}
}

// Push feeds one event, in stream arrival order, into the accumulator.
func (a *Accumulator) Push(ev faeevents.LlmEvent) {
	switch ev.Type {
	case faeevents.EventStreamStart, faeevents.EventThinkingStart, faeevents.EventThinkingEnd:
		// Markers only; nothing to accumulate.
	case faeevents.EventTextDelta:
		a.text += ev.Text
	case faeevents.EventThinkingDelta:
		a.thinking += ev.Text
	case faeevents.EventToolCallStart:
		a.callOrder = append(a.callOrder, ev.CallID)
		a.inProgress[ev.CallID] = &inProgress{callID: ev.CallID, functionName: ev.FunctionName}
	case faeevents.EventToolCallArgsDelta:
		if tc, ok := a.inProgress[ev.CallID]; ok {
			tc.argsBuf += ev.ArgsFragment
		}
		// Unknown call_id: ignored.
	case faeevents.EventToolCallEnd:
		if tc, ok := a.inProgress[ev.CallID]; ok {
			delete(a.inProgress, ev.CallID)
			a.completed = append(a.completed, ToolCall{
				CallID:        tc.callID,
				FunctionName:  tc.functionName,
				ArgumentsJSON: tc.argsBuf,
			})
		}
		// Unknown call_id: ignored.
	case faeevents.EventStreamEnd:
		a.finishReason = ev.FinishReason
		a.haveFinish = true
	case faeevents.EventStreamError:
		a.errMsg = ev.Error
	}
}

// Finish consumes the accumulator and returns the completed turn. Any tool
// calls still in progress (no matching ToolCallEnd was seen) are drained
// into the completed list with whatever arguments were buffered, and the
// full completed list is sorted by ToolCallStart arrival order.
func (a *Accumulator) Finish() Turn {
	for _, callID := range a.callOrder {
		if tc, ok := a.inProgress[callID]; ok {
			delete(a.inProgress, callID)
			a.completed = append(a.completed, ToolCall{
				CallID:        tc.callID,
				FunctionName:  tc.functionName,
				ArgumentsJSON: tc.argsBuf,
			})
		}
	}

	order := make(map[string]int, len(a.callOrder))
	for i, id := range a.callOrder {
		order[id] = i
	}
	sortByStartOrder(a.completed, order)

	finish := a.finishReason
	if !a.haveFinish {
		finish = faeevents.FinishOther
	}

	partial := a.errMsg != "" && (a.text != "" || a.thinking != "" || len(a.completed) > 0)

	return Turn{
		Text:         a.text,
		Thinking:     a.thinking,
		ToolCalls:    a.completed,
		FinishReason: finish,
		Error:        a.errMsg,
		Partial:      partial,
	}
}

// sortByStartOrder sorts tool calls by the index their call_id holds in the
// start-order map, with any unseen id (should not happen) sorted last.
func sortByStartOrder(calls []ToolCall, order map[string]int) {
	// Simple insertion sort: call counts per turn are small (single digits),
	// so this avoids pulling in sort for a handful of elements while staying
	// obviously stable (ties cannot occur — call_ids are unique per turn).
	for i := 1; i < len(calls); i++ {
		j := i
		for j > 0 && rank(calls[j-1].CallID, order) > rank(calls[j].CallID, order) {
			calls[j-1], calls[j] = calls[j], calls[j-1]
			j--
		}
	}
}

func rank(callID string, order map[string]int) int {
	if idx, ok := order[callID]; ok {
		return idx
	}
	return len(order) + 1
}
