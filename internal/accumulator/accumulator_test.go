package accumulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fae-dev/fae-core/internal/faeevents"
)

func TestTextOnlyStream(t *testing.T) {
	acc := New()
	acc.Push(faeevents.StreamStart("req-1", faeevents.NewModelRef("test-model")))
	acc.Push(faeevents.TextDelta("Hello"))
	acc.Push(faeevents.TextDelta("!"))
	acc.Push(faeevents.StreamEnd(faeevents.FinishStop))

	turn := acc.Finish()
	assert.Equal(t, "Hello!", turn.Text)
	assert.Equal(t, faeevents.FinishStop, turn.FinishReason)
	assert.Empty(t, turn.ToolCalls)
	assert.False(t, turn.Partial)
}

func TestThinkingAccumulates(t *testing.T) {
	acc := New()
	acc.Push(faeevents.ThinkingStart())
	acc.Push(faeevents.ThinkingDelta("let me "))
	acc.Push(faeevents.ThinkingDelta("think"))
	acc.Push(faeevents.ThinkingEnd())
	acc.Push(faeevents.StreamEnd(faeevents.FinishStop))

	turn := acc.Finish()
	assert.Equal(t, "let me think", turn.Thinking)
}

func TestToolCallReassembly(t *testing.T) {
	acc := New()
	acc.Push(faeevents.ToolCallStart("c1", "read"))
	acc.Push(faeevents.ToolCallArgsDelta("c1", `{"path":"`))
	acc.Push(faeevents.ToolCallArgsDelta("c1", `foo"}`))
	acc.Push(faeevents.ToolCallEnd("c1"))
	acc.Push(faeevents.StreamEnd(faeevents.FinishToolCalls))

	turn := acc.Finish()
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, "c1", turn.ToolCalls[0].CallID)
	assert.Equal(t, "read", turn.ToolCalls[0].FunctionName)
	assert.Equal(t, `{"path":"foo"}`, turn.ToolCalls[0].ArgumentsJSON)
}

func TestParallelToolCallsPreserveStartOrder(t *testing.T) {
	acc := New()
	acc.Push(faeevents.ToolCallStart("c1", "first"))
	acc.Push(faeevents.ToolCallStart("c2", "second"))
	acc.Push(faeevents.ToolCallArgsDelta("c2", "b-args"))
	acc.Push(faeevents.ToolCallArgsDelta("c1", "a-args"))
	// c2 ends before c1 — completion order must still follow start order.
	acc.Push(faeevents.ToolCallEnd("c2"))
	acc.Push(faeevents.ToolCallEnd("c1"))
	acc.Push(faeevents.StreamEnd(faeevents.FinishToolCalls))

	turn := acc.Finish()
	require.Len(t, turn.ToolCalls, 2)
	assert.Equal(t, "c1", turn.ToolCalls[0].CallID)
	assert.Equal(t, "c2", turn.ToolCalls[1].CallID)
}

func TestUnendedToolCallSurfacedWithPartialArgs(t *testing.T) {
	acc := New()
	acc.Push(faeevents.ToolCallStart("c1", "read"))
	acc.Push(faeevents.ToolCallArgsDelta("c1", `{"path":"incomplete`))
	// No ToolCallEnd, no StreamEnd: still must be drained by Finish.

	turn := acc.Finish()
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, `{"path":"incomplete`, turn.ToolCalls[0].ArgumentsJSON)
	assert.Equal(t, faeevents.FinishOther, turn.FinishReason)
}

func TestArgsDeltaForUnknownCallIDIgnored(t *testing.T) {
	acc := New()
	acc.Push(faeevents.ToolCallArgsDelta("ghost", "ignored"))
	acc.Push(faeevents.StreamEnd(faeevents.FinishStop))
	turn := acc.Finish()
	assert.Empty(t, turn.ToolCalls)
}

func TestToolCallEndForUnknownCallIDIgnored(t *testing.T) {
	acc := New()
	acc.Push(faeevents.ToolCallEnd("ghost"))
	acc.Push(faeevents.StreamEnd(faeevents.FinishStop))
	turn := acc.Finish()
	assert.Empty(t, turn.ToolCalls)
}

func TestEmptyStreamDefaultsToOther(t *testing.T) {
	acc := New()
	turn := acc.Finish()
	assert.Equal(t, faeevents.FinishOther, turn.FinishReason)
	assert.Empty(t, turn.Text)
}

func TestStreamErrorMarksPartial(t *testing.T) {
	acc := New()
	acc.Push(faeevents.TextDelta("partial reply"))
	acc.Push(faeevents.StreamError("connection reset"))

	turn := acc.Finish()
	assert.True(t, turn.Partial)
	assert.Equal(t, "connection reset", turn.Error)
	assert.Equal(t, "partial reply", turn.Text)
}

func TestStreamErrorOnEmptyBuffersNotPartial(t *testing.T) {
	acc := New()
	acc.Push(faeevents.StreamError("boom"))
	turn := acc.Finish()
	assert.False(t, turn.Partial)
}
